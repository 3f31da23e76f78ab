package auth

import (
	"fmt"
	"time"

	"github.com/PyNerdAlfaiz/referd-backend/pkg/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ActorClaims identifies either a user or a company account; Kind tells the
// middleware which protected group the token may enter.
type ActorClaims struct {
	ActorID uuid.UUID       `json:"actor_id"`
	Kind    model.ActorKind `json:"actor_kind"`
	Email   string          `json:"email"`
	jwt.RegisteredClaims
}

func NewActorClaims(actorID uuid.UUID, kind model.ActorKind, email string, duration time.Duration) (*ActorClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate token id: %w", err)
	}

	return &ActorClaims{
		ActorID: actorID,
		Kind:    kind,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}, nil
}

// Actor converts the claims to the domain actor tag.
func (c *ActorClaims) Actor() model.Actor {
	return model.Actor{Kind: c.Kind, ID: c.ActorID}
}
