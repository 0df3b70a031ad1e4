package players

import (
	"math"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	prospectAvatarBase   = "https://api.dicebear.com/7.x/avataaars/png"
	comparisonAvatarBase = "https://ui-avatars.com/api/"
	defaultAvatarSeed    = "prospect"
)

// Slugify derives the stable player id from a display name. It lower-cases,
// turns whitespace runs into one hyphen and keeps only letters, digits and
// hyphens. Letters outside ASCII survive ("nikola-jokić") after NFC
// composition, so NameFromSlug recovers the backend key. Case and
// surrounding whitespace never change the result.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := true
	for _, r := range strings.ToLower(norm.NFC.String(strings.TrimSpace(name))) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NameFromSlug turns a slug back into the lower-cased lookup key the backend expects.
func NameFromSlug(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(slug, "-", " ")))
}

// TitleCase capitalizes the first rune of every whitespace-delimited token
// and lower-cases the rest.
func TitleCase(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		first, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(first)) + strings.ToLower(tok[size:])
	}
	return strings.Join(tokens, " ")
}

// DisplayName title-cases names that arrive entirely lower- or upper-case and
// leaves mixed-case names ("OG Anunoby", "DeMar DeRozan") alone.
func DisplayName(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return ""
	}
	if raw == strings.ToLower(raw) || raw == strings.ToUpper(raw) {
		return TitleCase(raw)
	}
	return raw
}

// NormalizeProbability maps any value at or below 1 onto the 0-100 scale by
// multiplying by 100 and passes larger values through. Negative fractions
// stay negative; callers clamp where a bound matters. Non-finite input
// becomes 0.
func NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p <= 1 {
		return p * 100
	}
	return p
}

// Round1 rounds half up to one decimal place.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Floor(v*10+0.5+1e-9) / 10
}

// PerGame divides a season total by games played, treating a zero or missing
// game count as 1.
func PerGame(total, games float64) float64 {
	if math.IsNaN(games) || games <= 0 {
		games = 1
	}
	return Round1(total / games)
}

// Clamp bounds v into [lo, hi]; NaN becomes lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ProspectHeadshot is the deterministic avatar used when a prospect has no photo.
func ProspectHeadshot(id string) string {
	seed := id
	if seed == "" {
		seed = defaultAvatarSeed
	}
	q := url.Values{}
	q.Set("seed", seed)
	q.Set("backgroundColor", "1e3a5f")
	q.Set("radius", "50")
	return prospectAvatarBase + "?" + q.Encode()
}

// ComparisonHeadshot is the initials avatar used when an NBA comparison has no photo.
func ComparisonHeadshot(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "1a1a2e")
	q.Set("color", "ff6b35")
	q.Set("bold", "true")
	return comparisonAvatarBase + "?" + q.Encode()
}
