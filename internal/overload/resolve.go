// Package overload groups projected functions sharing a name into dispatch
// sets and derives disambiguating names for the sets that cannot coexist.
package overload

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"api-projector/internal/common"
	"api-projector/internal/diagnostic"
	"api-projector/internal/method"
	"api-projector/internal/naming"
	"api-projector/internal/typemap"
)

// OverloadingModule is the submodule holding the dispatch marker types of a
// module's overloaded functions.
const OverloadingModule = "overloading"

// markerSuffix distinguishes the dispatch marker type from the projected
// type sharing the function's class-case name.
const markerSuffix = "Args"

// Dispatcher is one overloaded function: a set of distinguishable overloads
// reachable through a single generic entry point keyed by a marker type.
type Dispatcher struct {
	// Function is the final path of the dispatching function.
	Function naming.Path
	// Marker is the path of the dispatch marker type inside the overloading
	// submodule.
	Marker naming.Path
	// Overloads are the member functions, in declaration order.
	Overloads []*method.ProjectedMethod
}

// Resolved is the overload-resolution output: every function has a final,
// conflict-free name.
type Resolved struct {
	// Functions are the plain (non-overloaded) functions.
	Functions []*method.ProjectedMethod
	// Dispatchers are the overloaded sets.
	Dispatchers []Dispatcher
}

// Resolve buckets the projected functions by name collision and resolves
// every collision either into a dispatch set or into renamed variants.
// An unresolvable collision is a run-aborting failure.
func Resolve(
	methods []*method.ProjectedMethod,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) (*Resolved, error) {
	groups := make(map[string][]*method.ProjectedMethod)

	for _, m := range methods {
		key := m.TargetName.String()
		groups[key] = append(groups[key], m)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	taken := make(map[string]struct{}, len(groups))
	for key := range groups {
		taken[key] = struct{}{}
	}

	out := &Resolved{}

	for _, key := range keys {
		group := groups[key]
		buckets := bucketize(group)

		captions, ok := bucketCaptions(buckets, taken)
		if !ok {
			diags.AddError(diagnostic.CodeAmbiguousOverload, key,
				"no caption strategy disambiguates the colliding functions")

			return nil, diags.Error()
		}

		for i, bucket := range buckets {
			name := bucket[0].Name()
			if captions[i] != "" {
				name = naming.SanitizeIdent(name + "_" + captions[i])

				for _, m := range bucket {
					m.Rename(name)
				}

				taken[bucket[0].TargetName.String()] = struct{}{}

				log.Debug("renamed colliding function",
					zap.String("group", key), zap.String("name", name))
			}

			if common.IsSingle(bucket) {
				out.Functions = append(out.Functions, bucket[0])

				continue
			}

			fn := bucket[0].TargetName
			marker := fn.Parent().
				Child(OverloadingModule).
				Child(naming.ToClass(naming.SplitWords(name)) + markerSuffix)

			out.Dispatchers = append(out.Dispatchers, Dispatcher{
				Function:  fn,
				Marker:    marker,
				Overloads: bucket,
			})
		}
	}

	return out, nil
}

// bucketize splits a name-collision group into sets of mutually
// distinguishable functions using first-fit assignment.
func bucketize(group []*method.ProjectedMethod) [][]*method.ProjectedMethod {
	var buckets [][]*method.ProjectedMethod

next:
	for _, m := range group {
		for i, bucket := range buckets {
			fits := true

			for _, member := range bucket {
				if !canOverload(m, member) {
					fits = false
					break
				}
			}

			if fits {
				buckets[i] = append(buckets[i], m)

				continue next
			}
		}

		buckets = append(buckets, []*method.ProjectedMethod{m})
	}

	return buckets
}

// canOverload reports whether two functions can share a dispatch set: same
// trust level, same receiver kind, and at least one caller-visible
// difference in their argument lists.
func canOverload(a, b *method.ProjectedMethod) bool {
	if a.CallerTrusted != b.CallerTrusted || a.Receiver != b.Receiver {
		return false
	}

	if len(a.Arguments) != len(b.Arguments) {
		return true
	}

	for i := range a.Arguments {
		if !a.Arguments[i].Type.SourceType.CanBeSameAs(b.Arguments[i].Type.SourceType) {
			return true
		}
	}

	return false
}

// bucketCaptions derives per-bucket name suffixes. Strategies are tried in
// order of meaningfulness; the first producing pairwise-distinct captions
// whose derived names collide with no other function wins. A single bucket
// never needs a caption.
func bucketCaptions(buckets [][]*method.ProjectedMethod, taken map[string]struct{}) ([]string, bool) {
	if common.IsSingle(buckets) {
		return []string{""}, true
	}

	strategies := []func([][]*method.ProjectedMethod) []string{
		trustOnlyCaptions,
		receiverOnlyCaptions,
		receiverAndIndexCaptions,
		receiverAndArgNameCaptions,
		argTypeCaptionsAt(typemap.CaptionShort),
		argTypeCaptionsAt(typemap.CaptionFull),
	}

	for _, strategy := range strategies {
		captions := strategy(buckets)
		if captions != nil && pairwiseDistinct(captions) && renamesFree(buckets, captions, taken) {
			return captions, true
		}
	}

	return nil, false
}

// renamesFree reports whether every non-empty caption derives a name not
// already held by a function outside this collision group.
func renamesFree(buckets [][]*method.ProjectedMethod, captions []string, taken map[string]struct{}) bool {
	for i, caption := range captions {
		if caption == "" {
			continue
		}

		renamed := naming.SanitizeIdent(buckets[i][0].Name() + "_" + caption)

		path := buckets[i][0].TargetName.Parent().Child(renamed)
		if _, clash := taken[path.String()]; clash {
			return false
		}
	}

	return true
}

// trustOnlyCaptions applies only to the exact pair of one trusted and one
// untrusted bucket: the trusted one is marked, the other keeps its name.
func trustOnlyCaptions(buckets [][]*method.ProjectedMethod) []string {
	if len(buckets) != 2 {
		return nil
	}

	a, b := buckets[0][0].CallerTrusted, buckets[1][0].CallerTrusted
	if a == b {
		return nil
	}

	captions := make([]string, 2)

	for i, bucket := range buckets {
		if bucket[0].CallerTrusted {
			captions[i] = "unchecked"
		}
	}

	return captions
}

func receiverOnlyCaptions(buckets [][]*method.ProjectedMethod) []string {
	captions := make([]string, len(buckets))
	for i, bucket := range buckets {
		captions[i] = receiverCaption(bucket[0].Receiver)
	}

	return captions
}

func receiverAndIndexCaptions(buckets [][]*method.ProjectedMethod) []string {
	captions := make([]string, len(buckets))
	for i, bucket := range buckets {
		captions[i] = joinCaption(receiverCaption(bucket[0].Receiver), strconv.Itoa(i))
	}

	return captions
}

func receiverAndArgNameCaptions(buckets [][]*method.ProjectedMethod) []string {
	captions := make([]string, len(buckets))

	for i, bucket := range buckets {
		names := make([]string, 0, len(bucket[0].Arguments))
		for _, arg := range bucket[0].Arguments {
			names = append(names, arg.Name)
		}

		captions[i] = joinCaption(receiverCaption(bucket[0].Receiver), strings.Join(names, "_"))
	}

	return captions
}

// argTypeCaptionsAt builds the receiver-plus-argument-types strategy at the
// given caption level. Short captions are tried before full ones so the
// derived names stay as terse as the collision allows.
func argTypeCaptionsAt(level typemap.CaptionLevel) func([][]*method.ProjectedMethod) []string {
	return func(buckets [][]*method.ProjectedMethod) []string {
		captions := make([]string, len(buckets))

		for i, bucket := range buckets {
			types := make([]string, 0, len(bucket[0].Arguments))

			for _, arg := range bucket[0].Arguments {
				caption, err := arg.Type.APIType.CaptionAt(level)
				if err != nil {
					return nil
				}

				types = append(types, caption)
			}

			captions[i] = joinCaption(receiverCaption(bucket[0].Receiver), strings.Join(types, "_"))
		}

		return captions
	}
}

func pairwiseDistinct(captions []string) bool {
	seen := make(map[string]struct{}, len(captions))

	for _, c := range captions {
		if _, dup := seen[c]; dup {
			return false
		}

		seen[c] = struct{}{}
	}

	return true
}

func receiverCaption(k method.ReceiverKind) string {
	switch k {
	case method.ReceiverMutRef:
		return "mut"
	case method.ReceiverValue:
		return "from_value"
	case method.ReceiverNone:
		return "static"
	default:
		return ""
	}
}

func joinCaption(parts ...string) string {
	nonEmpty := parts[:0]

	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, "_")
}
