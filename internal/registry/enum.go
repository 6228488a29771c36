package registry

import (
	"sort"
	"unicode"

	"api-projector/internal/common"
	"api-projector/internal/decl"
	"api-projector/internal/naming"
)

// syntheticVariantName is the name of the variant added when an enumeration
// has a single distinct value. The target representation requires at least
// two variants.
const syntheticVariantName = "_Invalid"

// PrepareEnumVariants converts parsed enumeration values into target
// variants:
//   - duplicate values collapse into one variant, first-seen name wins and
//     later names become documentation aliases;
//   - a single surviving value gets a synthetic second variant;
//   - common leading and trailing word sequences are stripped from variant
//     names when the result stays valid;
//   - the output is sorted ascending by value.
func PrepareEnumVariants(values []decl.EnumValue) []Variant {
	var result []Variant

	byValue := make(map[int64]int)

	for _, v := range values {
		if idx, ok := byValue[v.Value]; ok {
			result[idx].Aliases = append(result[idx].Aliases, v.Name)
			continue
		}

		byValue[v.Value] = len(result)
		result = append(result, Variant{
			Name:  naming.SanitizeIdent(naming.ToClass(naming.SplitWords(v.Name))),
			Value: v.Value,
			Doc:   v.Doc,
		})
	}

	if common.IsSingle(result) {
		dummy := int64(0)
		if _, taken := byValue[0]; taken {
			dummy = 1
		}

		result = append(result, Variant{
			Name:      syntheticVariantName,
			Value:     dummy,
			Synthetic: true,
		})
	} else if common.IsMultiple(result) {
		if short, ok := shortVariantNames(result); ok {
			for i := range result {
				result[i].Name = naming.SanitizeIdent(short[i])
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Value < result[j].Value
	})

	return result
}

// shortVariantNames strips the longest common leading and trailing word
// sequences from all variant names. The optimization is abandoned if any
// resulting name would be empty or begin with a digit.
func shortVariantNames(variants []Variant) ([]string, bool) {
	allWords := make([][]string, 0, len(variants))
	for _, v := range variants {
		allWords = append(allWords, naming.SplitWords(v.Name))
	}

	prefixLen := len(allWords[0])
	suffixLen := len(allWords[0])

	for _, words := range allWords {
		prefixLen = min(prefixLen, commonPrefixLen(allWords[0], words))
		suffixLen = min(suffixLen, commonSuffixLen(allWords[0], words))
	}

	short := make([]string, 0, len(allWords))

	for _, words := range allWords {
		hi := len(words) - suffixLen
		if hi < prefixLen {
			return nil, false
		}

		name := ""
		for _, w := range words[prefixLen:hi] {
			name += w
		}

		if name == "" || startsWithDigitRune(name) {
			return nil, false
		}

		short = append(short, name)
	}

	return short, true
}

func commonPrefixLen(a, b []string) int {
	n := min(len(a), len(b))

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

func commonSuffixLen(a, b []string) int {
	n := min(len(a), len(b))

	for i := 0; i < n; i++ {
		if a[len(a)-1-i] != b[len(b)-1-i] {
			return i
		}
	}

	return n
}

func startsWithDigitRune(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}

	return false
}
