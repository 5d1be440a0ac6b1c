package sections

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/sitescrape/pkg/models"
)

var listSel = cascadia.MustCompile(`ul, ol`)

// element is the view of a candidate the classification rules look at
type element struct {
	tag     string
	classes string
	id      string
	sel     *goquery.Selection
}

// rule maps a predicate to the section type it implies
type rule struct {
	name  string
	match func(e element) bool
	typ   models.SectionType
}

// rules are evaluated in order; the first match wins. Tag rules come before
// class/id keywords, which come before the structural list check.
var rules = []rule{
	{"header-hero", func(e element) bool { return e.tag == "header" && strings.Contains(e.classes, "hero") }, models.SectionHero},
	{"header", func(e element) bool { return e.tag == "header" }, models.SectionDefault},
	{"nav-tag", func(e element) bool { return e.tag == "nav" }, models.SectionNav},
	{"footer-tag", func(e element) bool { return e.tag == "footer" }, models.SectionFooter},
	{"hero-keyword", classOrID("hero", "banner", "jumbotron"), models.SectionHero},
	{"pricing-keyword", classOrID("pricing", "plans"), models.SectionPricing},
	{"faq-keyword", classOrID("faq", "questions"), models.SectionFAQ},
	{"grid-class", classOnly("grid", "cards"), models.SectionGrid},
	{"nav-keyword", classOrID("nav", "menu"), models.SectionNav},
	{"has-list", func(e element) bool { return e.sel.FindMatcher(listSel).Length() > 0 }, models.SectionList},
}

// Classify returns the section type for el
func Classify(el *goquery.Selection) models.SectionType {
	e := element{
		tag:     strings.ToLower(goquery.NodeName(el)),
		classes: strings.ToLower(el.AttrOr("class", "")),
		id:      strings.ToLower(el.AttrOr("id", "")),
		sel:     el,
	}
	for _, r := range rules {
		if r.match(e) {
			return r.typ
		}
	}
	return models.SectionDefault
}

func classOrID(keywords ...string) func(e element) bool {
	return func(e element) bool {
		for _, k := range keywords {
			if strings.Contains(e.classes, k) || strings.Contains(e.id, k) {
				return true
			}
		}
		return false
	}
}

func classOnly(keywords ...string) func(e element) bool {
	return func(e element) bool {
		for _, k := range keywords {
			if strings.Contains(e.classes, k) {
				return true
			}
		}
		return false
	}
}
