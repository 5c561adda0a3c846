package textnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentEquality(t *testing.T) {
	assert.Equal(t, NewBold("x"), NewBold("x"))
	assert.True(t, NewLink("a", "https://x").Equal(NewLink("a", "https://x")))

	assert.NotEqual(t, NewBold("x"), NewItalic("x"))
	assert.NotEqual(t, NewPlain("x"), NewPlain("y"))
	assert.NotEqual(t, NewLink("a", "u1"), NewLink("a", "u2"))
}

func TestFragmentEmptyTargetEqualsAbsent(t *testing.T) {
	assert.Equal(t, Fragment{Kind: Link, Content: "a"}, NewLink("a", ""))
	assert.Equal(t, NewImage("", ""), Fragment{Kind: Image})
}

func TestNewDropsTargetForPlainKinds(t *testing.T) {
	f := New(Bold, "b", "https://ignored")
	assert.Equal(t, "", f.Target)

	f = New(Image, "alt", "pic.png")
	assert.Equal(t, "pic.png", f.Target)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "image", Image.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestFragmentString(t *testing.T) {
	assert.Equal(t, `Fragment("hi", bold)`, NewBold("hi").String())
	assert.Equal(t, `Fragment("go", link, "https://go.dev")`, NewLink("go", "https://go.dev").String())
}

func TestPlainText(t *testing.T) {
	frags := []Fragment{NewPlain("This is "), NewBold("bold"), NewLink(" link", "u")}
	assert.Equal(t, "This is bold link", PlainText(frags))
	assert.Equal(t, "", PlainText(nil))
}
