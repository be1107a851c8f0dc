/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package urlspace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	libspc "github.com/sabouaram/aoserver/urlspace"
)

var _ = Describe("UrlSpace", func() {
	var (
		spc libspc.Space
		id  int
	)

	BeforeEach(func() {
		spc = libspc.New()
		id = spc.AllocNamespace()
	})

	Describe("Namespace allocation", func() {
		It("should allocate monotonically increasing ids", func() {
			Expect(id).To(Equal(0))
			Expect(spc.AllocNamespace()).To(Equal(1))
			Expect(spc.AllocNamespace()).To(Equal(2))
		})
	})

	Describe("Key encoding", func() {
		It("should flatten server, method and segments", func() {
			Expect(libspc.MkSeq("s1", "GET", "/a/b/c.html")).To(Equal([]string{"s1", "GET", "a", "b", "c.html"}))
		})

		It("should normalize trailing slashes", func() {
			Expect(libspc.MkSeq("s1", "GET", "/a/b/")).To(Equal(libspc.MkSeq("s1", "GET", "/a/b")))
		})

		It("should encode server-only tuples", func() {
			Expect(libspc.MkSeq("s1", "", "")).To(Equal([]string{"s1"}))
		})
	})

	Describe("Inheriting lookup", func() {
		BeforeEach(func() {
			spc.Add(id, "s", "GET", "/api", "hA", nil, 0)
			spc.Add(id, "s", "GET", "/api/v2/*.json", "hB", nil, 0)
		})

		It("should return the exact payload", func() {
			Expect(spc.Get(id, "s", "GET", "/api")).To(Equal("hA"))
		})

		It("should inherit along the path prefix", func() {
			Expect(spc.Get(id, "s", "GET", "/api/users")).To(Equal("hA"))
			Expect(spc.Get(id, "s", "GET", "/api/v2/deep/down/here")).To(Equal("hA"))
		})

		It("should prefer the matching wildcard channel", func() {
			Expect(spc.Get(id, "s", "GET", "/api/v2/u.json")).To(Equal("hB"))
		})

		It("should skip non matching wildcard channels", func() {
			Expect(spc.Get(id, "s", "GET", "/api/v2/u.xml")).To(Equal("hA"))
		})

		It("should miss other methods and servers", func() {
			Expect(spc.Get(id, "s", "POST", "/api")).To(BeNil())
			Expect(spc.Get(id, "other", "GET", "/api")).To(BeNil())
		})

		It("should miss other namespaces", func() {
			other := spc.AllocNamespace()
			Expect(spc.Get(other, "s", "GET", "/api")).To(BeNil())
		})
	})

	Describe("Non inheriting payloads", func() {
		BeforeEach(func() {
			spc.Add(id, "s", "GET", "/a", "inh", nil, 0)
			spc.Add(id, "s", "GET", "/a/b", "noi", nil, libspc.OpNoInherit)
		})

		It("should serve the non inheriting payload on its exact url", func() {
			Expect(spc.Get(id, "s", "GET", "/a/b")).To(Equal("noi"))
		})

		It("should not propagate the non inheriting payload deeper", func() {
			Expect(spc.Get(id, "s", "GET", "/a/b/c")).To(Equal("inh"))
		})
	})

	Describe("Exact lookup", func() {
		BeforeEach(func() {
			spc.Add(id, "s", "GET", "/a", "inh", nil, 0)
		})

		It("should find the exact tuple", func() {
			Expect(spc.GetExact(id, "s", "GET", "/a", 0)).To(Equal("inh"))
		})

		It("should never inherit", func() {
			Expect(spc.GetExact(id, "s", "GET", "/a/b", 0)).To(BeNil())
		})

		It("should select the slot by flag", func() {
			Expect(spc.GetExact(id, "s", "GET", "/a", libspc.OpNoInherit)).To(BeNil())
		})
	})

	Describe("Channel ordering", func() {
		It("should prefer the deeper match across channels", func() {
			spc.Add(id, "s", "GET", "/d/x.json", "exact", nil, 0)
			spc.Add(id, "s", "GET", "/d/*.json", "wild", nil, 0)

			Expect(spc.Get(id, "s", "GET", "/d/x.json")).To(Equal("exact"))
			Expect(spc.Get(id, "s", "GET", "/d/y.json")).To(Equal("wild"))
		})
	})

	Describe("Replacement", func() {
		It("should displace the previous payload and release it once", func() {
			var freed []interface{}

			del := func(data interface{}) { freed = append(freed, data) }

			spc.Add(id, "s", "GET", "/r", "h1", del, 0)
			spc.Add(id, "s", "GET", "/r", "h2", del, 0)

			Expect(spc.Get(id, "s", "GET", "/r")).To(Equal("h2"))
			Expect(freed).To(Equal([]interface{}{"h1"}))
		})

		It("should keep the previous payload alive under OpNoDelete", func() {
			var freed int

			del := func(data interface{}) { freed++ }

			spc.Add(id, "s", "GET", "/r", "h1", del, 0)
			spc.Add(id, "s", "GET", "/r", "h2", del, libspc.OpNoDelete)

			Expect(freed).To(Equal(0))
		})
	})

	Describe("Delete", func() {
		It("should remove the payload and release it", func() {
			var freed int

			spc.Add(id, "s", "GET", "/del", "h", func(interface{}) { freed++ }, 0)

			Expect(spc.Del(id, "s", "GET", "/del", 0)).To(Equal("h"))
			Expect(freed).To(Equal(1))
			Expect(spc.Get(id, "s", "GET", "/del")).To(BeNil())
		})

		It("should prune emptied branches", func() {
			spc.Add(id, "s", "GET", "/deep/down/url", "h", nil, 0)
			spc.Del(id, "s", "GET", "/deep/down/url", 0)

			// re-adding after a full prune behaves like a first add
			spc.Add(id, "s", "GET", "/deep/down/url", "h2", nil, 0)
			Expect(spc.Get(id, "s", "GET", "/deep/down/url")).To(Equal("h2"))
		})

		It("should keep siblings intact", func() {
			spc.Add(id, "s", "GET", "/p/a", "ha", nil, 0)
			spc.Add(id, "s", "GET", "/p/b", "hb", nil, 0)

			spc.Del(id, "s", "GET", "/p/a", 0)

			Expect(spc.Get(id, "s", "GET", "/p/a")).To(BeNil())
			Expect(spc.Get(id, "s", "GET", "/p/b")).To(Equal("hb"))
		})

		It("should truncate a whole subtree recursively", func() {
			var freed []interface{}

			del := func(data interface{}) { freed = append(freed, data) }

			spc.Add(id, "s", "GET", "/t", "root", del, 0)
			spc.Add(id, "s", "GET", "/t/a", "ta", del, 0)
			spc.Add(id, "s", "GET", "/t/a/b", "tab", del, 0)

			spc.Del(id, "s", "GET", "/t", libspc.OpRecurse)

			Expect(freed).To(ConsistOf("root", "ta", "tab"))
			Expect(spc.Get(id, "s", "GET", "/t/a/b")).To(BeNil())
		})

		It("should only truncate the addressed namespace", func() {
			other := spc.AllocNamespace()

			spc.Add(id, "s", "GET", "/n", "mine", nil, 0)
			spc.Add(other, "s", "GET", "/n", "theirs", nil, 0)

			spc.Del(id, "s", "GET", "/n", libspc.OpRecurse)

			Expect(spc.Get(id, "s", "GET", "/n")).To(BeNil())
			Expect(spc.Get(other, "s", "GET", "/n")).To(Equal("theirs"))
		})
	})
})
