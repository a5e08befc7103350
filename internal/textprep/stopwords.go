// ABOUTME: Immutable stopword and domain exclusion sets for product text
// ABOUTME: Built once at startup; optionally extended from a YAML or word-list file
package textprep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// englishStopwords is the standard English stopword list (NLTK corpus)
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because",
	"as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after", "above", "below", "to",
	"from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
	"will", "just", "don", "don't", "should", "should've", "now", "d", "ll", "m",
	"o", "re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn",
	"didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven",
	"haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn", "mustn't",
	"needn", "needn't", "shan", "shan't", "shouldn", "shouldn't", "wasn", "wasn't",
	"weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

// domainExclusions are marketing adjectives, brand names, and packaging/unit words
// that appear across both catalogs and carry no product identity
var domainExclusions = []string{
	// marketing
	"fresh", "juicy", "delicious", "tasty", "premium", "best", "sourced", "cleaned",
	"hygienic", "order", "try", "quality", "tender", "succulent", "meaty", "rich",
	"smooth", "comforting", "ready", "clean", "flavorful", "savoury", "wholesome",
	"superior", "indulgent", "favourite", "authentic", "classic", "perfect",
	"delightful", "mouthwatering", "amazing", "special", "everyday", "supreme",
	"organic", "nutritious", "healthy", "nutrient", "delivered",
	// brands and sourcing
	"japfa", "licious", "biosecure", "farm", "farms", "raised", "processing",
	"center", "centre",
	// packaging and units
	"big", "mini", "pack", "pieces", "piece", "large", "small", "medium", "net",
	"g", "gm", "grams",
}

// Stopwords is a read-only token set; the zero value filters nothing
type Stopwords struct {
	set map[string]struct{}
}

// NewStopwords builds a set from the given word lists, lower-casing each entry
func NewStopwords(lists ...[]string) Stopwords {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				set[w] = struct{}{}
			}
		}
	}
	return Stopwords{set: set}
}

// DefaultStopwords returns English stopwords plus the grocery domain exclusions
func DefaultStopwords() Stopwords {
	return NewStopwords(englishStopwords, domainExclusions)
}

// Contains reports whether token is filtered
func (s Stopwords) Contains(token string) bool {
	_, ok := s.set[token]
	return ok
}

// Len returns the number of filtered tokens
func (s Stopwords) Len() int {
	return len(s.set)
}

// OverrideFile is the YAML layout accepted by LoadStopwords
type OverrideFile struct {
	// ReplaceDefaults drops the built-in lists instead of extending them
	ReplaceDefaults bool     `yaml:"replace_defaults"`
	Stopwords       []string `yaml:"stopwords"`
	Exclusions      []string `yaml:"exclusions"`
}

// LoadStopwords builds the set from an override file; an empty path returns the defaults.
// Files ending in .yaml or .yml use the OverrideFile layout; any other file is a plain
// word list, one token per line, with # comments. Both extend the built-in lists unless
// a YAML file sets replace_defaults.
func LoadStopwords(path string) (Stopwords, error) {
	if path == "" {
		return DefaultStopwords(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Stopwords{}, fmt.Errorf("reading stopword file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return NewStopwords(englishStopwords, domainExclusions, parseWordList(data)), nil
	}

	var override OverrideFile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Stopwords{}, fmt.Errorf("parsing stopword file: %w", err)
	}

	if override.ReplaceDefaults {
		return NewStopwords(override.Stopwords, override.Exclusions), nil
	}
	return NewStopwords(englishStopwords, domainExclusions, override.Stopwords, override.Exclusions), nil
}

func parseWordList(data []byte) []string {
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		words = append(words, strings.Fields(line)...)
	}
	return words
}
