package group

import "github.com/adisurya/campushub/internal"

type CreateGroupDTO struct {
	Name                   string   `json:"name"`
	Admin                  string   `json:"admin"`
	NotPublic              bool     `json:"not_public"`
	Members                []string `json:"members"`
	CanPostAnnouncement    []string `json:"can_post_announcement"`
	CanPostAssessment      []string `json:"can_post_assessment"`
	CanPostPull            []string `json:"can_post_pull"`
	CanPostRoomReservation []string `json:"can_post_room_reservation"`
}

func (d *CreateGroupDTO) Validate(maxNameBytes int) error {
	if d.Name == "" {
		return internal.NewValidationError("group name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Name) > maxNameBytes {
		return internal.NewValidationError("group name is too long", internal.ErrCodeNameTooLong)
	}
	return nil
}

// ModifyAction names one group mutation.
type ModifyAction string

const (
	ModifyDelete           ModifyAction = "delete"
	ModifyVisibility       ModifyAction = "visibility"
	ModifyRename           ModifyAction = "rename"
	ModifyAddAdmin         ModifyAction = "add_admin"
	ModifyRemoveAdmin      ModifyAction = "remove_admin"
	ModifyAddMember        ModifyAction = "add_member"
	ModifyRemoveMember     ModifyAction = "remove_member"
	ModifyAddPermission    ModifyAction = "add_permission"
	ModifyRemovePermission ModifyAction = "remove_permission"
)

type ModifyGroupDTO struct {
	GroupID int64        `json:"group_id"`
	Action  ModifyAction `json:"action"`
	// Name is the new group name, rename only.
	Name string `json:"name,omitempty"`
	// Dimension selects the permission set for add/remove_permission.
	Dimension PostAction `json:"dimension,omitempty"`
	// Subjects are the usernames the action applies to.
	Subjects []string `json:"subjects,omitempty"`
}

func (d *ModifyGroupDTO) Validate(maxNameBytes int) error {
	if d.GroupID <= 0 {
		return internal.NewValidationError("group_id is required", internal.ErrCodeValidationFailed)
	}

	switch d.Action {
	case ModifyDelete, ModifyVisibility:
		return nil
	case ModifyRename:
		if d.Name == "" {
			return internal.NewValidationError("new name is required", internal.ErrCodeValidationFailed)
		}
		if len(d.Name) > maxNameBytes {
			return internal.NewValidationError("group name is too long", internal.ErrCodeNameTooLong)
		}
		return nil
	case ModifyAddAdmin, ModifyRemoveAdmin, ModifyAddMember, ModifyRemoveMember:
		if len(d.Subjects) == 0 {
			return internal.NewValidationError("at least one subject is required", internal.ErrCodeValidationFailed)
		}
		return nil
	case ModifyAddPermission, ModifyRemovePermission:
		if len(d.Subjects) == 0 {
			return internal.NewValidationError("at least one subject is required", internal.ErrCodeValidationFailed)
		}
		if !d.Dimension.Valid() {
			return internal.NewValidationError("invalid permission dimension", internal.ErrCodeInvalidAction)
		}
		return nil
	default:
		return internal.NewValidationError("invalid action", internal.ErrCodeInvalidAction)
	}
}
