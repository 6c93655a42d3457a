package group

import (
	"log/slog"
	"strconv"

	"github.com/adisurya/campushub/internal"
)

// Repository abstracts group persistence. Mutate must run its callback
// under a row lock inside a transaction: two admins editing the same group
// concurrently would otherwise lose updates to the delimited-set columns.
type Repository interface {
	Create(g *Group) error
	GetByID(id int64) (*Group, error)
	Delete(id int64) error
	Mutate(id int64, fn func(g *Group) error) error
	ListRefsByMember(username string) ([]Ref, error)
	ListPublicRefs() ([]Ref, error)
	ListByCapability(capability string) ([]*Group, error)
}

type Service struct {
	repo         Repository
	logger       *slog.Logger
	maxNameBytes int
}

func NewService(repo Repository, logger *slog.Logger, maxNameBytes int) *Service {
	if maxNameBytes <= 0 {
		maxNameBytes = 50
	}
	return &Service{
		repo:         repo,
		logger:       logger,
		maxNameBytes: maxNameBytes,
	}
}

// ---- Permission Evaluator ----

// HasCapability reports whether any group the user belongs to grants the
// capability. This replaces hardcoded admin group ids with one query.
func (s *Service) HasCapability(username, capability string) (bool, error) {
	groups, err := s.repo.ListByCapability(capability)
	if err != nil {
		return false, internal.NewInternalError("capability lookup failed", err)
	}
	for _, g := range groups {
		if g.IsMember(username) {
			return true, nil
		}
	}
	return false, nil
}

// HasPostPermission is the single authorization primitive for "may this
// user act in this group's name" shared by posts and reservations.
func (s *Service) HasPostPermission(username string, groupID int64, action PostAction) (bool, error) {
	if !action.Valid() {
		return false, internal.NewValidationError("invalid post action", internal.ErrCodeInvalidAction)
	}
	g, err := s.repo.GetByID(groupID)
	if err != nil {
		return false, err
	}
	return SetHas(g.PermissionSet(action), username), nil
}

// GroupIDsFor returns the ids of every group the user is a member of.
func (s *Service) GroupIDsFor(username string) ([]int64, error) {
	refs, err := s.repo.ListRefsByMember(username)
	if err != nil {
		return nil, internal.NewInternalError("group lookup failed", err)
	}
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// CanView evaluates a comma-joined permission set of group ids. An empty
// set means unrestricted. Global admins bypass the check.
func (s *Service) CanView(username, permissionSet string) (bool, error) {
	if permissionSet == "" {
		return true, nil
	}

	allowed := make(map[int64]struct{})
	for _, tok := range SplitSet(permissionSet) {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		allowed[id] = struct{}{}
	}

	ids, err := s.GroupIDsFor(username)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			return true, nil
		}
	}

	return s.HasCapability(username, CapabilityGlobalAdmin)
}

// ---- Group Registry ----

// ListGroupsFor returns the groups a user belongs to. Querying another
// user's memberships requires the global-admin capability.
func (s *Service) ListGroupsFor(requester, username string) ([]Ref, error) {
	if username == "" {
		username = requester
	}
	if username != requester {
		isAdmin, err := s.HasCapability(requester, CapabilityGlobalAdmin)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, internal.ErrNoCapability
		}
	}
	refs, err := s.repo.ListRefsByMember(username)
	if err != nil {
		return nil, internal.NewInternalError("group lookup failed", err)
	}
	return refs, nil
}

func (s *Service) ListPublicGroups() ([]Ref, error) {
	refs, err := s.repo.ListPublicRefs()
	if err != nil {
		return nil, internal.NewInternalError("group lookup failed", err)
	}
	return refs, nil
}

func (s *Service) CreateGroup(requester string, dto CreateGroupDTO) (*Group, error) {
	isAdmin, err := s.HasCapability(requester, CapabilityGlobalAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrNoCapability
	}

	if err := dto.Validate(s.maxNameBytes); err != nil {
		return nil, err
	}

	admin := dto.Admin
	if admin == "" {
		admin = requester
	}

	members := dto.Members
	if !containsString(members, admin) {
		members = append(members, admin)
	}

	notPublic := 0
	if dto.NotPublic {
		notPublic = 1
	}

	g := &Group{
		Name:                   dto.Name,
		Admins:                 admin,
		NotPublic:              notPublic,
		CanPostAnnouncement:    JoinSet(dto.CanPostAnnouncement),
		CanPostAssessment:      JoinSet(dto.CanPostAssessment),
		CanPostPull:            JoinSet(dto.CanPostPull),
		CanPostRoomReservation: JoinSet(dto.CanPostRoomReservation),
		Members:                JoinSet(members),
	}

	if err := s.repo.Create(g); err != nil {
		s.logger.Error("group creation failed", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create group", err)
	}

	s.logger.Info("group created", "group_id", g.ID, "name", g.Name, "admin", admin)
	return g, nil
}

// ModifyGroup applies one mutation to a group. The requester must hold the
// global-admin capability or be an admin of the group itself. Membership
// add/remove is idempotent by design: replaying an add or removing an
// absent user is a no-op, which keeps concurrent admin edits tolerant.
func (s *Service) ModifyGroup(requester string, dto ModifyGroupDTO) error {
	if err := dto.Validate(s.maxNameBytes); err != nil {
		return err
	}

	isGlobalAdmin, err := s.HasCapability(requester, CapabilityGlobalAdmin)
	if err != nil {
		return err
	}

	if dto.Action == ModifyDelete {
		g, err := s.repo.GetByID(dto.GroupID)
		if err != nil {
			return err
		}
		if !isGlobalAdmin && !g.IsAdmin(requester) {
			return internal.ErrNotGroupAdmin
		}
		if err := s.repo.Delete(dto.GroupID); err != nil {
			return internal.NewInternalError("failed to delete group", err)
		}
		s.logger.Info("group deleted", "group_id", dto.GroupID, "by", requester)
		return nil
	}

	return s.repo.Mutate(dto.GroupID, func(g *Group) error {
		if !isGlobalAdmin && !g.IsAdmin(requester) {
			return internal.ErrNotGroupAdmin
		}
		return applyModification(g, dto)
	})
}

func applyModification(g *Group, dto ModifyGroupDTO) error {
	switch dto.Action {
	case ModifyVisibility:
		g.NotPublic = 1 - g.NotPublic
	case ModifyRename:
		g.Name = dto.Name
	case ModifyAddAdmin:
		for _, u := range dto.Subjects {
			g.Admins = SetAdd(g.Admins, u)
			// every admin must also be a member
			g.Members = SetAdd(g.Members, u)
		}
	case ModifyRemoveAdmin:
		for _, u := range dto.Subjects {
			g.Admins = SetRemove(g.Admins, u)
		}
	case ModifyAddMember:
		for _, u := range dto.Subjects {
			g.Members = SetAdd(g.Members, u)
		}
	case ModifyRemoveMember:
		for _, u := range dto.Subjects {
			removeEverywhere(g, u)
		}
	case ModifyAddPermission:
		for _, u := range dto.Subjects {
			g.setPermissionSet(dto.Dimension, SetAdd(g.PermissionSet(dto.Dimension), u))
		}
	case ModifyRemovePermission:
		for _, u := range dto.Subjects {
			g.setPermissionSet(dto.Dimension, SetRemove(g.PermissionSet(dto.Dimension), u))
		}
	default:
		return internal.NewValidationError("invalid action", internal.ErrCodeInvalidAction)
	}
	return nil
}

// JoinPublicGroup adds the user to a public group's member set. The boolean
// result distinguishes a fresh join from "already a member".
func (s *Service) JoinPublicGroup(username string, groupID int64) (alreadyMember bool, err error) {
	err = s.repo.Mutate(groupID, func(g *Group) error {
		if !g.IsPublic() {
			return ErrGroupPrivate
		}
		if g.IsMember(username) {
			alreadyMember = true
			return nil
		}
		g.Members = SetAdd(g.Members, username)
		return nil
	})
	if err != nil {
		return false, err
	}
	if !alreadyMember {
		s.logger.Info("user joined group", "group_id", groupID, "username", username)
	}
	return alreadyMember, nil
}

// LeaveGroup removes the user from all five sets in one transactional
// update.
func (s *Service) LeaveGroup(username string, groupID int64) error {
	err := s.repo.Mutate(groupID, func(g *Group) error {
		if !g.IsMember(username) {
			return ErrNotMember
		}
		removeEverywhere(g, username)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("user left group", "group_id", groupID, "username", username)
	return nil
}

// removeEverywhere drops a user from the admin set, all four permission
// dimensions and the member set, preserving the admin-implies-member
// invariant.
func removeEverywhere(g *Group, username string) {
	g.Admins = SetRemove(g.Admins, username)
	g.CanPostAnnouncement = SetRemove(g.CanPostAnnouncement, username)
	g.CanPostAssessment = SetRemove(g.CanPostAssessment, username)
	g.CanPostPull = SetRemove(g.CanPostPull, username)
	g.CanPostRoomReservation = SetRemove(g.CanPostRoomReservation, username)
	g.Members = SetRemove(g.Members, username)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
