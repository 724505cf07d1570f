package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Rahul-J-IT/stream-app/internal/errs"
	"github.com/Rahul-J-IT/stream-app/internal/model"
)

// Directory resolves stream owners against the event/user persistence store.
// It is read-only here: the relay only validates identities and fetches
// display names.
type Directory struct {
	db *gorm.DB
}

// NewDirectory creates a directory over the identity store.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// ResolveOwner returns the display name for a streamer id. The id may be an
// event id (the common case: streams are created per event) or a user id.
func (d *Directory) ResolveOwner(id string) (string, error) {
	var ev model.Event
	err := d.db.Preload("Owner").Where("id = ?", id).First(&ev).Error
	if err == nil {
		if ev.Owner != nil {
			return ev.Owner.Name, nil
		}
		return ev.Title, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var u model.User
	err = d.db.Where("id = ?", id).First(&u).Error
	if err == nil {
		return u.Name, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errs.ErrOwnerNotFound
	}
	return "", err
}
