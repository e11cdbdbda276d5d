package services

import "github.com/spotlist/api-go/models"

type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorAdmin ActorKind = "admin"
)

type Capability string

const (
	CapCreatePosts       Capability = "posts:create"
	CapFileReports       Capability = "reports:file"
	CapApprovePosts      Capability = "posts:approve"
	CapDeactivatePosts   Capability = "posts:deactivate"
	CapAdjudicateReports Capability = "reports:adjudicate"
	CapManageReports     Capability = "reports:manage"
	CapListUsers         Capability = "users:list"
	CapDeleteUsers       Capability = "users:delete"
)

var kindCapabilities = map[ActorKind][]Capability{
	ActorUser: {CapCreatePosts, CapFileReports},
	ActorAdmin: {
		CapApprovePosts,
		CapDeactivatePosts,
		CapAdjudicateReports,
		CapManageReports,
		CapListUsers,
		CapDeleteUsers,
	},
}

// Actor is an authenticated caller. Capabilities follow from Kind; a User
// record never grants admin capabilities.
type Actor struct {
	Kind  ActorKind
	ID    uint
	Email string
	Name  string
	caps  map[Capability]struct{}
}

func NewActor(kind ActorKind, id uint, email, name string) *Actor {
	caps := make(map[Capability]struct{})
	for _, c := range kindCapabilities[kind] {
		caps[c] = struct{}{}
	}
	return &Actor{Kind: kind, ID: id, Email: email, Name: name, caps: caps}
}

func UserActor(u *models.User) *Actor {
	return NewActor(ActorUser, u.ID, u.Email, u.Name)
}

func AdminActor(a *models.AdminUser) *Actor {
	return NewActor(ActorAdmin, a.ID, a.Email, a.FullName())
}

func (a *Actor) Can(c Capability) bool {
	if a == nil {
		return false
	}
	_, ok := a.caps[c]
	return ok
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Kind == ActorAdmin
}

func (a *Actor) require(c Capability) error {
	if !a.Can(c) {
		return ErrNotAuthorized
	}
	return nil
}
