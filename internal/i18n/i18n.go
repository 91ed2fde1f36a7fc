// Package i18n holds the storefront's English and Khmer interface strings.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	English = "en"
	Khmer   = "km"
)

var tags = []language.Tag{language.English, language.Khmer}

var matcher = language.NewMatcher(tags)

// messages maps a key to its English and Khmer text.
var messages = map[string][2]string{
	"search":            {"Search products", "ស្វែងរកផលិតផល"},
	"backOffice":        {"Back office", "ផ្នែករដ្ឋបាល"},
	"wishlist":          {"Wishlist", "បញ្ជីចំណូលចិត្ត"},
	"notifications":     {"Notifications", "ការជូនដំណឹង"},
	"cart":              {"Cart", "កន្ត្រក"},
	"login":             {"Log in", "ចូលគណនី"},
	"register":          {"Sign up", "ចុះឈ្មោះ"},
	"logOut":            {"Log out", "ចាកចេញ"},
	"shopByCategory":    {"Shop by category", "ទិញតាមប្រភេទ"},
	"shopMen":           {"Shop Men", "ទិញសម្រាប់បុរស"},
	"shopWomen":         {"Shop Women", "ទិញសម្រាប់ស្ត្រី"},
	"exploreCollection": {"Explore our collection", "ស្វែងយល់ពីបណ្តុំរបស់យើង"},
	"noProducts":        {"No products found.", "រកមិនឃើញផលិតផលទេ។"},
	"unavailable":       {"Unavailable", "មិនមានលក់"},
	"addWishlist":       {"Add to wishlist", "បន្ថែមទៅបញ្ជីចំណូលចិត្ត"},
	"removeWishlist":    {"Remove from wishlist", "ដកចេញពីបញ្ជីចំណូលចិត្ត"},
	"aboutUs":           {"About Us", "អំពី​ពួក​យើង"},
	"customerService":   {"Customer services", "សេវាកម្ម​អតិថិជន"},
	"privacyPolicy":     {"Privacy Policy", "គោលការណ៍​ភាព​ឯកជន"},
	"contactUs":         {"Contact us", "ទាក់ទង​មក​ពួក​យើង"},
	"weAccept":          {"We accept", "យើងទទួលយក"},
	"languages":         {"Languages", "ភាសា"},
	"english":           {"English", "អង់គ្លេស"},
	"khmer":             {"Khmer", "ខ្មែរ"},
	"save":              {"Save", "រក្សាទុក"},
}

var tables = build()

func build() map[string]map[string]string {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range messages {
		if err := b.SetString(language.English, key, text[0]); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Khmer, key, text[1]); err != nil {
			panic(err)
		}
	}
	out := map[string]map[string]string{}
	for _, tag := range tags {
		p := message.NewPrinter(tag, message.Catalog(b))
		t := make(map[string]string, len(messages))
		for key := range messages {
			t[key] = p.Sprintf(key)
		}
		base, _ := tag.Base()
		out[base.String()] = t
	}
	return out
}

// Parse returns the supported language named by s.
func Parse(s string) (string, bool) {
	switch s {
	case English, Khmer:
		return s, true
	}
	return "", false
}

// FromAcceptLanguage picks the best supported language for an
// Accept-Language header, English when nothing matches.
func FromAcceptLanguage(header string) string {
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return English
	}
	_, i, conf := matcher.Match(prefs...)
	if conf == language.No {
		return English
	}
	base, _ := tags[i].Base()
	return base.String()
}

// T returns the interface strings for lang, English for unknown languages.
// The map is shared; callers must not modify it.
func T(lang string) map[string]string {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[English]
}
