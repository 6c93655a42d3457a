package group_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adisurya/campushub/internal/group"
)

var _ = Describe("Delimited set codec", func() {
	It("decodes the empty string to the empty set", func() {
		Expect(group.SplitSet("")).To(BeEmpty())
	})

	It("ignores empty elements", func() {
		Expect(group.SplitSet("a,,b")).To(Equal([]string{"a", "b"}))
	})

	It("round-trips through join", func() {
		in := []string{"alice", "bob", "carol"}
		Expect(group.SplitSet(group.JoinSet(in))).To(Equal(in))
	})

	It("matches members exactly, not by substring", func() {
		encoded := "ab,cd"
		Expect(group.SetHas(encoded, "a")).To(BeFalse())
		Expect(group.SetHas(encoded, "ab")).To(BeTrue())
	})

	It("adds idempotently", func() {
		s := group.SetAdd("a,b", "b")
		Expect(s).To(Equal("a,b"))
		s = group.SetAdd(s, "c")
		Expect(s).To(Equal("a,b,c"))
	})

	It("removes idempotently", func() {
		s := group.SetRemove("a,b,c", "b")
		Expect(s).To(Equal("a,c"))
		Expect(group.SetRemove(s, "zz")).To(Equal("a,c"))
	})

	It("removes down to the empty encoding", func() {
		Expect(group.SetRemove("a", "a")).To(Equal(""))
	})
})
