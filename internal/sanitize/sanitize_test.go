package sanitize

import (
	"regexp"
	"strings"
	"testing"
)

var tagRx = regexp.MustCompile(`<\s*/?\s*([a-zA-Z0-9]+)[^>]*>`)

func tagsIn(s string) []string {
	var out []string
	for _, m := range tagRx.FindAllStringSubmatch(s, -1) {
		out = append(out, strings.ToLower(m[1]))
	}
	return out
}

func TestPlain_RemovesAllTags(t *testing.T) {
	in := `Jo <script>alert(1)</script><b onclick="x()">Bold</b><img src=x onerror=y>`
	got := Plain(in)
	if tags := tagsIn(got); len(tags) != 0 {
		t.Fatalf("Plain(%q) = %q still has tags %v", in, got, tags)
	}
	if !strings.Contains(got, "Bold") {
		t.Errorf("text content dropped: %q", got)
	}
}

func TestInline_KeepsAllowListWithoutAttributes(t *testing.T) {
	in := `<p class="x">Hi <strong style="color:red">there</strong><br/>` +
		`<a href="javascript:evil()">link</a><iframe src="//x"></iframe><em>ok</em></p>`
	got := Inline(in)

	allowed := map[string]bool{}
	for _, tag := range InlineTags {
		allowed[tag] = true
	}
	for _, tag := range tagsIn(got) {
		if !allowed[tag] {
			t.Errorf("disallowed tag %q survived in %q", tag, got)
		}
	}
	for _, attr := range []string{"class=", "style=", "href=", "src="} {
		if strings.Contains(got, attr) {
			t.Errorf("attribute %q survived in %q", attr, got)
		}
	}
	if !strings.Contains(got, "<strong>there</strong>") {
		t.Errorf("allowed markup lost: %q", got)
	}
}

func TestFields_PicksPolicyPerField(t *testing.T) {
	in := map[string]string{
		"subject": "<b>Hi</b>",
		"message": "<b>Hi</b><script>x</script>",
	}
	out := Fields(in, func(f string) bool { return f == "message" })
	if out["subject"] != "Hi" {
		t.Errorf("subject = %q", out["subject"])
	}
	if out["message"] != "<b>Hi</b>" {
		t.Errorf("message = %q", out["message"])
	}
	if in["subject"] != "<b>Hi</b>" {
		t.Errorf("input map mutated")
	}
}

func TestText(t *testing.T) {
	stored := Inline("<p>Tom &amp; Jerry</p><script>x</script>")
	if got := Text(stored); got != "Tom & Jerry" {
		t.Errorf("Text = %q", got)
	}
}
