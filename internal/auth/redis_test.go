package auth_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/go-redis/redis/v8"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/auth"
)

var _ = Describe("RedisStore", func() {
	var (
		mr    *miniredis.Miniredis
		store *auth.RedisStore
		ctx   context.Context
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		store = auth.NewRedisStore(client, 30*time.Minute)
		ctx = context.Background()
	})

	AfterEach(func() {
		mr.Close()
	})

	It("round-trips a session through redis", func() {
		token, err := store.Create(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())

		username, err := store.Resolve(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(username).To(Equal("alice"))
	})

	It("expires sessions after the inactivity window", func() {
		token, err := store.Create(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())

		mr.FastForward(31 * time.Minute)

		_, err = store.Resolve(ctx, token)
		Expect(err).To(MatchError(internal.ErrUnauthenticated))
	})

	It("refreshes the TTL on resolve", func() {
		token, err := store.Create(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())

		mr.FastForward(29 * time.Minute)
		_, err = store.Resolve(ctx, token)
		Expect(err).NotTo(HaveOccurred())

		// the earlier TTL would have lapsed by now
		mr.FastForward(29 * time.Minute)
		username, err := store.Resolve(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(username).To(Equal("alice"))
	})

	It("deletes sessions on logout", func() {
		token, err := store.Create(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Delete(ctx, token)).To(Succeed())

		_, err = store.Resolve(ctx, token)
		Expect(err).To(MatchError(internal.ErrUnauthenticated))
	})
})
