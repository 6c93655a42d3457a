package post

import "github.com/adisurya/campushub/internal"

type CreatePostDTO struct {
	GroupID       int64   `json:"group_id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Public        bool    `json:"public"`
	PermissionSet []int64 `json:"permission_set"`
}

func (d *CreatePostDTO) Validate() error {
	if d.GroupID <= 0 {
		return internal.NewValidationError("group_id is required", internal.ErrCodeValidationFailed)
	}
	if _, ok := PermissionAction(d.Type); !ok {
		return ErrBadPostType
	}
	if d.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListPostsDTO selects one of the post views.
type ListPostsDTO struct {
	View    string // public | my | user | group
	Type    string // optional filter
	TargetU string // user view
	TargetG int64  // group view
	Offset  int
}

const (
	ViewPublic = "public"
	ViewMy     = "my"
	ViewUser   = "user"
	ViewGroup  = "group"
)

func (d *ListPostsDTO) Validate() error {
	switch d.View {
	case ViewPublic, ViewMy:
	case ViewUser:
		if d.TargetU == "" {
			return internal.NewValidationError("username is required for the user view", internal.ErrCodeValidationFailed)
		}
	case ViewGroup:
		if d.TargetG <= 0 {
			return internal.NewValidationError("group_id is required for the group view", internal.ErrCodeValidationFailed)
		}
	default:
		return internal.NewValidationError("invalid view", internal.ErrCodeInvalidAction)
	}
	if d.Type != "" {
		if _, ok := PermissionAction(d.Type); !ok {
			return ErrBadPostType
		}
	}
	return nil
}

type VoteDTO struct {
	PostID  int64  `json:"-"`
	Opinion string `json:"opinion"`
}

func (d *VoteDTO) Validate() error {
	if d.PostID <= 0 {
		return internal.NewValidationError("post id is required", internal.ErrCodeValidationFailed)
	}
	if d.Opinion != OpinionAgree && d.Opinion != OpinionDisagree {
		return internal.NewValidationError("opinion must be agree or disagree", internal.ErrCodeInvalidAction)
	}
	return nil
}

// ModifyAction names one post mutation.
type ModifyAction string

const (
	ModifyEdit   ModifyAction = "edit"
	ModifyDelete ModifyAction = "delete"
)

type ModifyPostDTO struct {
	PostID  int64        `json:"-"`
	Action  ModifyAction `json:"action"`
	Title   *string      `json:"title,omitempty"`
	Content *string      `json:"content,omitempty"`
}

func (d *ModifyPostDTO) Validate() error {
	if d.PostID <= 0 {
		return internal.NewValidationError("post id is required", internal.ErrCodeValidationFailed)
	}
	switch d.Action {
	case ModifyDelete:
		return nil
	case ModifyEdit:
		if d.Title == nil && d.Content == nil {
			return internal.NewValidationError("nothing to edit", internal.ErrCodeValidationFailed)
		}
		if d.Title != nil && *d.Title == "" {
			return internal.NewValidationError("title cannot be empty", internal.ErrCodeValidationFailed)
		}
		return nil
	}
	return internal.NewValidationError("invalid action", internal.ErrCodeInvalidAction)
}

// PostDetails is a post plus its pull tallies when it has them.
type PostDetails struct {
	*Post
	Pull *Pull `json:"pull,omitempty"`
}
