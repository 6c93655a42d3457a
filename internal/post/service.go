package post

import (
	"log/slog"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/group"
)

// PageSize is the fixed page length of every post listing.
const PageSize = 30

type Repository interface {
	Create(p *Post, pull *Pull) error
	GetByID(id int64) (*Post, error)
	GetPull(postID int64) (*Pull, error)
	Update(p *Post) error
	Delete(id int64) error
	ListPublic(postType string, offset, limit int) ([]*Post, error)
	ListByAuthor(author, postType string, offset, limit int) ([]*Post, error)
	ListByGroup(groupID int64, postType string, offset, limit int) ([]*Post, error)
	IncrementVote(postID int64, opinion string) error
	Follow(username string, postID int64) error
	Unfollow(username string, postID int64) error
	ListFollowed(username string, offset, limit int) ([]*Post, error)
}

// PermissionEvaluator is the slice of the group service posts depend on.
type PermissionEvaluator interface {
	HasPostPermission(username string, groupID int64, action group.PostAction) (bool, error)
	CanView(username, permissionSet string) (bool, error)
	HasCapability(username, capability string) (bool, error)
}

type Service struct {
	repo   Repository
	perms  PermissionEvaluator
	logger *slog.Logger
}

func NewService(repo Repository, perms PermissionEvaluator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		logger: logger,
	}
}

// CreatePost checks the matching can_post permission of the post_as group.
// Restricted posts always include that group in their permission set.
func (s *Service) CreatePost(username string, dto CreatePostDTO) (*Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	action, _ := PermissionAction(dto.Type)
	allowed, err := s.perms.HasPostPermission(username, dto.GroupID, action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrNoPostPermission
	}

	p := &Post{
		Username:  username,
		GroupID:   dto.GroupID,
		Type:      dto.Type,
		Title:     dto.Title,
		Content:   dto.Content,
		CreatedAt: time.Now(),
	}
	if !dto.Public {
		p.PermissionSet = EncodePermissionSet(dto.PermissionSet, dto.GroupID)
	}

	var pull *Pull
	if dto.Type == TypePull {
		pull = &Pull{}
	}

	if err := s.repo.Create(p, pull); err != nil {
		s.logger.Error("post creation failed", "username", username, "error", err)
		return nil, internal.NewInternalError("failed to create post", err)
	}

	s.logger.Info("post created", "post_id", p.ID, "type", p.Type, "username", username)
	return p, nil
}

// GetPosts serves the listing views. The public view carries unrestricted
// posts only; the others are filtered through CanView per row, with global
// admins passing every gate.
func (s *Service) GetPosts(username string, dto ListPostsDTO) ([]*Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		posts []*Post
		err   error
	)
	switch dto.View {
	case ViewPublic:
		return s.repo.ListPublic(dto.Type, dto.Offset, PageSize)
	case ViewMy:
		return s.repo.ListByAuthor(username, dto.Type, dto.Offset, PageSize)
	case ViewUser:
		posts, err = s.repo.ListByAuthor(dto.TargetU, dto.Type, dto.Offset, PageSize)
	case ViewGroup:
		posts, err = s.repo.ListByGroup(dto.TargetG, dto.Type, dto.Offset, PageSize)
	}
	if err != nil {
		return nil, err
	}
	return s.filterViewable(username, posts)
}

func (s *Service) GetPostDetails(username string, postID int64) (*PostDetails, error) {
	p, err := s.repo.GetByID(postID)
	if err != nil {
		return nil, err
	}

	if err := s.gateView(username, p); err != nil {
		return nil, err
	}

	details := &PostDetails{Post: p}
	if p.Type == TypePull {
		pull, err := s.repo.GetPull(postID)
		if err != nil {
			return nil, err
		}
		details.Pull = pull
	}
	return details, nil
}

// Vote increments a pull tally. Viewing rights gate voting.
func (s *Service) Vote(username string, dto VoteDTO) (*Pull, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(dto.PostID)
	if err != nil {
		return nil, err
	}
	if p.Type != TypePull {
		return nil, ErrNotPull
	}
	if err := s.gateView(username, p); err != nil {
		return nil, err
	}

	if err := s.repo.IncrementVote(dto.PostID, dto.Opinion); err != nil {
		return nil, internal.NewInternalError("vote failed", err)
	}

	s.logger.Info("vote recorded", "post_id", dto.PostID, "opinion", dto.Opinion, "username", username)
	return s.repo.GetPull(dto.PostID)
}

// ModifyPost edits or deletes; the author and global admins only.
func (s *Service) ModifyPost(username string, dto ModifyPostDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	p, err := s.repo.GetByID(dto.PostID)
	if err != nil {
		return err
	}

	if p.Username != username {
		isAdmin, err := s.perms.HasCapability(username, group.CapabilityGlobalAdmin)
		if err != nil {
			return err
		}
		if !isAdmin {
			return ErrNotAuthor
		}
	}

	if dto.Action == ModifyDelete {
		if err := s.repo.Delete(dto.PostID); err != nil {
			return err
		}
		s.logger.Info("post deleted", "post_id", dto.PostID, "by", username)
		return nil
	}

	if dto.Title != nil {
		p.Title = *dto.Title
	}
	if dto.Content != nil {
		p.Content = *dto.Content
	}
	if err := s.repo.Update(p); err != nil {
		return internal.NewInternalError("failed to update post", err)
	}

	s.logger.Info("post edited", "post_id", dto.PostID, "by", username)
	return nil
}

// FollowPost and UnfollowPost are idempotent; following requires viewing
// rights.
func (s *Service) FollowPost(username string, postID int64) error {
	p, err := s.repo.GetByID(postID)
	if err != nil {
		return err
	}
	if err := s.gateView(username, p); err != nil {
		return err
	}
	return s.repo.Follow(username, postID)
}

func (s *Service) UnfollowPost(username string, postID int64) error {
	return s.repo.Unfollow(username, postID)
}

// GetTimeline lists followed posts, re-gated per row in case the caller's
// memberships changed since following.
func (s *Service) GetTimeline(username string, offset int) ([]*Post, error) {
	posts, err := s.repo.ListFollowed(username, offset, PageSize)
	if err != nil {
		return nil, err
	}
	return s.filterViewable(username, posts)
}

func (s *Service) gateView(username string, p *Post) error {
	ok, err := s.perms.CanView(username, p.PermissionSet)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCannotView
	}
	return nil
}

func (s *Service) filterViewable(username string, posts []*Post) ([]*Post, error) {
	out := posts[:0]
	for _, p := range posts {
		ok, err := s.perms.CanView(username, p.PermissionSet)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
