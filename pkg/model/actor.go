package model

import "github.com/google/uuid"

// ActorKind distinguishes the two account collections sharing the auth
// surface.
type ActorKind string

const (
	ActorUser    ActorKind = "user"
	ActorCompany ActorKind = "company"
)

// Actor identifies who performed a state change, recorded in status
// history and checked against ownership on every transition.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func UserActor(id uuid.UUID) Actor {
	return Actor{Kind: ActorUser, ID: id}
}

func CompanyActor(id uuid.UUID) Actor {
	return Actor{Kind: ActorCompany, ID: id}
}
