package youtube_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clipforge/clipforge/internal/youtube"
)

var _ = Describe("url parsing", func() {
	DescribeTable("extracts the video id from recognized forms",
		func(url, wantID string) {
			id, ok := youtube.ExtractVideoID(url)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(wantID))
			Expect(youtube.ValidateURL(url)).To(BeTrue())
		},
		Entry("watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("watch url without www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("mobile watch url", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("watch url with extra params", "https://www.youtube.com/watch?list=PLx&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("plain http", "http://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("short url with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"),
		Entry("embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"),
		Entry("shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"),
	)

	DescribeTable("rejects anything else",
		func(url string) {
			Expect(youtube.ValidateURL(url)).To(BeFalse())
		},
		Entry("empty string", ""),
		Entry("another site", "https://vimeo.com/12345"),
		Entry("youtube lookalike", "https://notyoutube.com/watch?v=dQw4w9WgXcQ"),
		Entry("watch url without id", "https://www.youtube.com/watch"),
		Entry("truncated id", "https://youtu.be/dQw4w9W"),
		Entry("channel url", "https://www.youtube.com/@somechannel"),
		Entry("bare id", "dQw4w9WgXcQ"),
	)
})
