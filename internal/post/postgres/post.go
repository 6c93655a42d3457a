package postgres

import (
	"errors"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/post"
	"gorm.io/gorm"
)

// PostRepository implements the post.Repository interface using GORM
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) post.Repository {
	return &PostRepository{db: db}
}

// Create inserts the post and, for pulls, its tally row in one transaction.
func (r *PostRepository) Create(p *post.Post, pull *post.Pull) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if pull != nil {
			pull.PostID = p.ID
			return tx.Create(pull).Error
		}
		return nil
	})
}

func (r *PostRepository) GetByID(id int64) (*post.Post, error) {
	var p post.Post
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) GetPull(postID int64) (*post.Pull, error) {
	var pull post.Pull
	err := r.db.Where("post_id = ?", postID).First(&pull).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPostNotFound
		}
		return nil, err
	}
	return &pull, nil
}

func (r *PostRepository) Update(p *post.Post) error {
	return r.db.Save(p).Error
}

// Delete removes the post with its pull tallies and follows.
func (r *PostRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&post.Pull{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&post.Follow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&post.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrPostNotFound
		}
		return nil
	})
}

func (r *PostRepository) ListPublic(postType string, offset, limit int) ([]*post.Post, error) {
	q := r.db.Where("permission_set = ''")
	return r.page(q, postType, offset, limit)
}

func (r *PostRepository) ListByAuthor(author, postType string, offset, limit int) ([]*post.Post, error) {
	q := r.db.Where("username = ?", author)
	return r.page(q, postType, offset, limit)
}

func (r *PostRepository) ListByGroup(groupID int64, postType string, offset, limit int) ([]*post.Post, error) {
	q := r.db.Where("group_id = ?", groupID)
	return r.page(q, postType, offset, limit)
}

func (r *PostRepository) page(q *gorm.DB, postType string, offset, limit int) ([]*post.Post, error) {
	if postType != "" {
		q = q.Where("type = ?", postType)
	}
	var posts []*post.Post
	err := q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostRepository) IncrementVote(postID int64, opinion string) error {
	column := "agree"
	if opinion == post.OpinionDisagree {
		column = "disagree"
	}
	res := r.db.Model(&post.Pull{}).
		Where("post_id = ?", postID).
		Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrPostNotFound
	}
	return nil
}

// Follow is idempotent: re-following is swallowed, not an error.
func (r *PostRepository) Follow(username string, postID int64) error {
	var count int64
	err := r.db.Model(&post.Follow{}).
		Where("username = ? AND post_id = ?", username, postID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&post.Follow{Username: username, PostID: postID}).Error
}

func (r *PostRepository) Unfollow(username string, postID int64) error {
	return r.db.Where("username = ? AND post_id = ?", username, postID).
		Delete(&post.Follow{}).Error
}

func (r *PostRepository) ListFollowed(username string, offset, limit int) ([]*post.Post, error) {
	var posts []*post.Post
	err := r.db.
		Joins("JOIN post_follows ON post_follows.post_id = posts.id").
		Where("post_follows.username = ?", username).
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
