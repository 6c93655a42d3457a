package post_test

import (
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/post"
)

func TestPostService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Post Service Suite")
}

// Mock repository for testing
type mockPostRepository struct {
	posts   map[int64]*post.Post
	pulls   map[int64]*post.Pull
	follows map[string]map[int64]bool
	nextID  int64
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{
		posts:   make(map[int64]*post.Post),
		pulls:   make(map[int64]*post.Pull),
		follows: make(map[string]map[int64]bool),
		nextID:  1,
	}
}

func (m *mockPostRepository) Create(p *post.Post, pull *post.Pull) error {
	p.ID = m.nextID
	m.nextID++
	m.posts[p.ID] = p
	if pull != nil {
		pull.PostID = p.ID
		m.pulls[p.ID] = pull
	}
	return nil
}

func (m *mockPostRepository) GetByID(id int64) (*post.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, internal.ErrPostNotFound
	}
	return p, nil
}

func (m *mockPostRepository) GetPull(postID int64) (*post.Pull, error) {
	pull, ok := m.pulls[postID]
	if !ok {
		return nil, internal.ErrPostNotFound
	}
	return pull, nil
}

func (m *mockPostRepository) Update(p *post.Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *mockPostRepository) Delete(id int64) error {
	if _, ok := m.posts[id]; !ok {
		return internal.ErrPostNotFound
	}
	delete(m.posts, id)
	delete(m.pulls, id)
	return nil
}

func (m *mockPostRepository) sorted(filter func(*post.Post) bool, postType string, offset, limit int) []*post.Post {
	var out []*post.Post
	for _, p := range m.posts {
		if postType != "" && p.Type != postType {
			continue
		}
		if filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *mockPostRepository) ListPublic(postType string, offset, limit int) ([]*post.Post, error) {
	return m.sorted(func(p *post.Post) bool { return p.IsPublic() }, postType, offset, limit), nil
}

func (m *mockPostRepository) ListByAuthor(author, postType string, offset, limit int) ([]*post.Post, error) {
	return m.sorted(func(p *post.Post) bool { return p.Username == author }, postType, offset, limit), nil
}

func (m *mockPostRepository) ListByGroup(groupID int64, postType string, offset, limit int) ([]*post.Post, error) {
	return m.sorted(func(p *post.Post) bool { return p.GroupID == groupID }, postType, offset, limit), nil
}

func (m *mockPostRepository) IncrementVote(postID int64, opinion string) error {
	pull, ok := m.pulls[postID]
	if !ok {
		return internal.ErrPostNotFound
	}
	if opinion == post.OpinionAgree {
		pull.Agree++
	} else {
		pull.Disagree++
	}
	return nil
}

func (m *mockPostRepository) Follow(username string, postID int64) error {
	if m.follows[username] == nil {
		m.follows[username] = make(map[int64]bool)
	}
	m.follows[username][postID] = true
	return nil
}

func (m *mockPostRepository) Unfollow(username string, postID int64) error {
	delete(m.follows[username], postID)
	return nil
}

func (m *mockPostRepository) ListFollowed(username string, offset, limit int) ([]*post.Post, error) {
	return m.sorted(func(p *post.Post) bool { return m.follows[username][p.ID] }, "", offset, limit), nil
}

// mockPerms resolves permissions from a static membership table the way the
// group service would.
type mockPerms struct {
	canPost map[string]map[int64]group.PostAction
	groups  map[string][]int64
	admins  map[string]bool
}

func (m *mockPerms) HasPostPermission(username string, groupID int64, action group.PostAction) (bool, error) {
	return m.canPost[username][groupID] == action, nil
}

func (m *mockPerms) CanView(username, permissionSet string) (bool, error) {
	if permissionSet == "" || m.admins[username] {
		return true, nil
	}
	for _, tok := range strings.Split(permissionSet, ",") {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		for _, gid := range m.groups[username] {
			if gid == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockPerms) HasCapability(username, capability string) (bool, error) {
	return m.admins[username], nil
}

var _ = Describe("Post Service", func() {
	var (
		repo  *mockPostRepository
		perms *mockPerms
		svc   *post.Service
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockPostRepository()
		perms = &mockPerms{
			canPost: map[string]map[int64]group.PostAction{
				"alice": {10: group.ActionAnnouncement},
				"bob":   {10: group.ActionPull},
			},
			groups: map[string][]int64{
				"alice": {10},
				"bob":   {10},
				"carol": {20},
			},
			admins: map[string]bool{"root": true},
		}
		svc = post.NewService(repo, perms, testLogger)
	})

	Describe("CreatePost", func() {
		It("requires the matching can_post permission", func() {
			_, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypeAnnouncement,
				Title:   "exam schedule",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())

			// alice holds announcement rights, not pull rights
			_, err = svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypePull,
				Title:   "vote",
			})
			Expect(err).To(MatchError(internal.ErrNoPostPermission))
		})

		It("always includes the authoring group in a restricted set", func() {
			p, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID:       10,
				Type:          post.TypeAnnouncement,
				Title:         "internal note",
				PermissionSet: []int64{20},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.PermissionSet).To(Equal("10,20"))
		})

		It("creates a zeroed tally row for pulls", func() {
			p, err := svc.CreatePost("bob", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypePull,
				Title:   "extend library hours?",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())

			pull, err := repo.GetPull(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(pull.Agree).To(BeZero())
			Expect(pull.Disagree).To(BeZero())
		})
	})

	Describe("view gating", func() {
		var restrictedID int64

		BeforeEach(func() {
			p, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypeAnnouncement,
				Title:   "members only",
			})
			Expect(err).NotTo(HaveOccurred())
			restrictedID = p.ID
		})

		It("hides restricted posts from non-members", func() {
			_, err := svc.GetPostDetails("carol", restrictedID)
			Expect(err).To(MatchError(post.ErrCannotView))
		})

		It("shows restricted posts to members and admins", func() {
			_, err := svc.GetPostDetails("bob", restrictedID)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.GetPostDetails("root", restrictedID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("filters listings per row", func() {
			posts, err := svc.GetPosts("carol", post.ListPostsDTO{View: post.ViewGroup, TargetG: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(BeEmpty())

			posts, err = svc.GetPosts("bob", post.ListPostsDTO{View: post.ViewGroup, TargetG: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
		})
	})

	Describe("Vote", func() {
		var pullID int64

		BeforeEach(func() {
			p, err := svc.CreatePost("bob", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypePull,
				Title:   "extend library hours?",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())
			pullID = p.ID
		})

		It("increments the chosen tally", func() {
			pull, err := svc.Vote("carol", post.VoteDTO{PostID: pullID, Opinion: post.OpinionAgree})
			Expect(err).NotTo(HaveOccurred())
			Expect(pull.Agree).To(Equal(1))

			pull, err = svc.Vote("alice", post.VoteDTO{PostID: pullID, Opinion: post.OpinionDisagree})
			Expect(err).NotTo(HaveOccurred())
			Expect(pull.Agree).To(Equal(1))
			Expect(pull.Disagree).To(Equal(1))
		})

		It("rejects voting on non-pull posts", func() {
			p, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypeAnnouncement,
				Title:   "notice",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Vote("bob", post.VoteDTO{PostID: p.ID, Opinion: post.OpinionAgree})
			Expect(err).To(MatchError(post.ErrNotPull))
		})

		It("rejects invalid opinions", func() {
			_, err := svc.Vote("bob", post.VoteDTO{PostID: pullID, Opinion: "maybe"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ModifyPost", func() {
		var postID int64

		BeforeEach(func() {
			p, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypeAnnouncement,
				Title:   "original",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())
			postID = p.ID
		})

		It("lets the author edit partially", func() {
			title := "corrected"
			Expect(svc.ModifyPost("alice", post.ModifyPostDTO{
				PostID: postID,
				Action: post.ModifyEdit,
				Title:  &title,
			})).To(Succeed())

			p, _ := repo.GetByID(postID)
			Expect(p.Title).To(Equal("corrected"))
		})

		It("rejects non-authors without global admin", func() {
			err := svc.ModifyPost("bob", post.ModifyPostDTO{PostID: postID, Action: post.ModifyDelete})
			Expect(err).To(MatchError(post.ErrNotAuthor))

			Expect(svc.ModifyPost("root", post.ModifyPostDTO{PostID: postID, Action: post.ModifyDelete})).To(Succeed())
			_, err = repo.GetByID(postID)
			Expect(err).To(MatchError(internal.ErrPostNotFound))
		})
	})

	Describe("timeline", func() {
		var postID int64

		BeforeEach(func() {
			p, err := svc.CreatePost("alice", post.CreatePostDTO{
				GroupID: 10,
				Type:    post.TypeAnnouncement,
				Title:   "follow me",
				Public:  true,
			})
			Expect(err).NotTo(HaveOccurred())
			postID = p.ID
		})

		It("follows idempotently and unfollows", func() {
			Expect(svc.FollowPost("carol", postID)).To(Succeed())
			Expect(svc.FollowPost("carol", postID)).To(Succeed())

			posts, err := svc.GetTimeline("carol", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))

			Expect(svc.UnfollowPost("carol", postID)).To(Succeed())
			posts, err = svc.GetTimeline("carol", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(BeEmpty())
		})
	})
})
