package classifier

import (
	"log"
	"regexp"
	"sort"
	"sync"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// Matcher is one named recognition rule with an intrinsic sensitivity
// level. A match is only accepted when the optional Validate checksum
// passes, which keeps the separator-tolerant regexes from flagging
// arbitrary digit runs.
type Matcher struct {
	Type     string
	Level    models.SensitivityLevel
	Pattern  *regexp.Regexp
	Validate func(match string) bool
}

// Result aggregates every accepted match over one input. Level is the
// maximum level among the matches; Public with no types when nothing
// matched.
type Result struct {
	Level      models.SensitivityLevel
	Types      []string
	Detections []models.Detection
}

// Classifier scans text with a fixed set of matchers. It is stateless
// after construction and safe for concurrent use.
type Classifier struct {
	matchers []Matcher
}

var regexCache sync.Map

// getCachedRegex retrieves a compiled regex from cache or compiles it.
func getCachedRegex(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}
	r, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, r)
	return r, nil
}

// New builds a classifier from the built-in jurisdiction patterns plus
// any deployment-defined custom patterns. Custom patterns with an
// invalid regex or level are logged and skipped, never fatal.
func New(custom ...models.Pattern) *Classifier {
	matchers := builtinMatchers()
	for _, p := range custom {
		if !p.IsActive {
			continue
		}
		re, err := getCachedRegex(p.Regex)
		if err != nil {
			log.Printf("Invalid regex for pattern %s: %v", p.Name, err)
			continue
		}
		level, err := models.ParseLevel(p.Level)
		if err != nil {
			log.Printf("Invalid level for pattern %s: %v", p.Name, err)
			continue
		}
		matchers = append(matchers, Matcher{Type: p.Name, Level: level, Pattern: re})
	}
	return &Classifier{matchers: matchers}
}

// Classify scans the input for sensitive-data patterns. It never fails:
// an input with no matches is a valid Public result.
func (c *Classifier) Classify(text string) Result {
	var candidates []models.Detection

	for _, m := range c.matchers {
		for _, match := range m.Pattern.FindAllStringIndex(text, -1) {
			value := text[match[0]:match[1]]
			if m.Validate != nil && !m.Validate(value) {
				continue
			}
			candidates = append(candidates, models.Detection{
				Type:  m.Type,
				Level: m.Level,
				Start: match[0],
				End:   match[1],
			})
		}
	}

	// Sort by start ascending, longest match first on ties, so that
	// overlap filtering keeps the widest span.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End > candidates[j].End
	})

	var detections []models.Detection
	currentIndex := 0
	for _, d := range candidates {
		if d.Start < currentIndex {
			continue
		}
		detections = append(detections, d)
		currentIndex = d.End
	}

	result := Result{Level: models.LevelPublic}
	seen := make(map[string]bool)
	for _, d := range detections {
		if d.Level > result.Level {
			result.Level = d.Level
		}
		if !seen[d.Type] {
			seen[d.Type] = true
			result.Types = append(result.Types, d.Type)
		}
	}
	sort.Strings(result.Types)
	result.Detections = detections
	return result
}
