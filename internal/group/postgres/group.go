package postgres

import (
	"errors"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/group"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository implements the group.Repository interface using GORM
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) group.Repository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(g *group.Group) error {
	return r.db.Create(g).Error
}

func (r *GroupRepository) GetByID(id int64) (*group.Group, error) {
	var g group.Group
	err := r.db.Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) Delete(id int64) error {
	res := r.db.Where("id = ?", id).Delete(&group.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrGroupNotFound
	}
	return nil
}

// Mutate runs fn against the row under a transaction. On Postgres the row is
// locked with FOR UPDATE so concurrent admin edits to the delimited-set
// columns serialize instead of losing updates; SQLite serializes writes on
// its own, and rejects the locking clause.
func (r *GroupRepository) Mutate(id int64, fn func(g *group.Group) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var g group.Group
		if err := q.Where("id = ?", id).First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrGroupNotFound
			}
			return err
		}

		if err := fn(&g); err != nil {
			return err
		}

		return tx.Save(&g).Error
	})
}

// ListRefsByMember scans all groups and filters in memory. The member column
// is delimited text, so "a" would also LIKE-match "ab"; exact matching via
// the set codec is the only correct test.
func (r *GroupRepository) ListRefsByMember(username string) ([]group.Ref, error) {
	var groups []group.Group
	if err := r.db.Select("id", "name", "member").Find(&groups).Error; err != nil {
		return nil, err
	}
	refs := make([]group.Ref, 0, len(groups))
	for _, g := range groups {
		if g.IsMember(username) {
			refs = append(refs, group.Ref{ID: g.ID, Name: g.Name})
		}
	}
	return refs, nil
}

func (r *GroupRepository) ListPublicRefs() ([]group.Ref, error) {
	var groups []group.Group
	err := r.db.Select("id", "name").
		Where("not_public = ?", 0).
		Order("id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	refs := make([]group.Ref, 0, len(groups))
	for _, g := range groups {
		refs = append(refs, group.Ref{ID: g.ID, Name: g.Name})
	}
	return refs, nil
}

func (r *GroupRepository) ListByCapability(capability string) ([]*group.Group, error) {
	var groups []*group.Group
	if err := r.db.Where("capabilities <> ''").Find(&groups).Error; err != nil {
		return nil, err
	}
	out := groups[:0]
	for _, g := range groups {
		if g.GrantsCapability(capability) {
			out = append(out, g)
		}
	}
	return out, nil
}
