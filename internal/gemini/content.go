package gemini

import "sort"

// ContentKind selects the writing task for GenerateContent.
type ContentKind string

const (
	KindBlogOutline     ContentKind = "blog_outline"
	KindWebsiteStory    ContentKind = "website_story"
	KindVendorQuestions ContentKind = "vendor_questions"
)

// MaxPromptLength bounds user-supplied prompt text.
const MaxPromptLength = 4000

var instructions = map[ContentKind]string{
	KindBlogOutline: "You help a wedding planning blog. Write a Markdown outline for a blog post " +
		"on the topic you are given: a title, an introduction sentence and 4 to 7 section headings " +
		"each with two or three bullet points. Keep it practical and friendly.",
	KindWebsiteStory: "You help couples write the 'Our Story' section of their wedding website. " +
		"Using the details you are given, write two or three short, warm paragraphs in the first " +
		"person plural. Do not invent names, dates or places that were not provided.",
	KindVendorQuestions: "You help couples interview wedding vendors. For the vendor type and " +
		"details you are given, write a Markdown list of 10 to 15 specific questions to ask, grouped " +
		"under short headings such as pricing, logistics and contracts.",
}

func (k ContentKind) Valid() bool {
	_, ok := instructions[k]
	return ok
}

// ContentKinds lists the supported kinds in alphabetical order.
func ContentKinds() []ContentKind {
	kinds := make([]ContentKind, 0, len(instructions))
	for k := range instructions {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
