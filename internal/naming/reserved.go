package naming

// reservedIdents is the target language's reserved identifier list. An escaped
// identifier gets a trailing marker character appended.
var reservedIdents = map[string]struct{}{
	"abstract": {}, "as": {}, "become": {}, "box": {}, "break": {},
	"const": {}, "continue": {}, "crate": {}, "do": {}, "else": {},
	"enum": {}, "extern": {}, "false": {}, "final": {}, "fn": {},
	"for": {}, "if": {}, "impl": {}, "in": {}, "let": {},
	"loop": {}, "macro": {}, "match": {}, "mod": {}, "move": {},
	"mut": {}, "override": {}, "priv": {}, "pub": {}, "ref": {},
	"return": {}, "self": {}, "static": {}, "struct": {}, "super": {},
	"trait": {}, "true": {}, "type": {}, "unsafe": {}, "use": {},
	"virtual": {}, "where": {}, "while": {}, "yield": {},
}

const escapeMarker = "_"

// SanitizeIdent escapes identifiers that collide with the target's reserved
// words by appending the marker character.
func SanitizeIdent(name string) string {
	if _, ok := reservedIdents[name]; ok {
		return name + escapeMarker
	}

	return name
}
