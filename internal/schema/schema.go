package schema

import "strings"

// Verb selects the per-verb role allow-list for a resource type.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbList   Verb = "list"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// AllowList maps a role type to the status codes that satisfy it. A caller
// passes when any listed role on their user document carries one of the
// listed codes. An empty (or nil) AllowList means any authenticated caller
// passes.
type AllowList map[string][]int

// Resource declares the writable/readable attributes for one resource type
// together with its per-verb authorization requirements.
type Resource struct {
	// Attributes is the whitelist: the only payload fields persisted or
	// projected for this type.
	Attributes []string
	// Person is true for role-application types that live on user documents
	// (roles.<type>); false for standalone feedback/team documents.
	Person bool
	// Listable is false for types the admin List view does not query.
	Listable bool
	// Allow holds the role allow-list per verb.
	Allow map[Verb]AllowList
}

// Registry is the immutable resource-type table handed to the dashboard
// router at construction.
type Registry struct {
	resources map[string]Resource
}

func NewRegistry(resources map[string]Resource) *Registry {
	return &Registry{resources: resources}
}

// adminOnly is the allow-list used for every admin-facing verb.
func adminOnly() AllowList { return AllowList{"admins": {1}} }

// Default returns the registry for the portal's resource types.
func Default() *Registry {
	person := func(attrs ...string) Resource {
		return Resource{
			Attributes: attrs,
			Person:     true,
			Listable:   true,
			Allow: map[Verb]AllowList{
				VerbCreate: nil, // any authenticated caller may apply
				VerbList:   adminOnly(),
				VerbUpdate: adminOnly(),
				VerbDelete: adminOnly(),
			},
		}
	}
	return NewRegistry(map[string]Resource{
		"admins":       person("name", "email", "discord"),
		"committees":   person("name", "email", "discord"),
		"judges":       person("name", "email", "discord"),
		"mentors":      person("name", "email", "discord"),
		"volunteers":   person("name", "email", "discord"),
		"interests":    person("name", "email", "discord"),
		"participants": person("name", "email", "discord", "school", "major", "grade", "shirt", "resume"),
		"sponsors":     person("name", "email", "discord", "company", "tier"),
		"feedback": {
			Attributes: []string{"name", "email", "discord", "rating", "comments"},
			Listable:   true,
			Allow: map[Verb]AllowList{
				VerbCreate: nil,
				VerbList:   adminOnly(),
				VerbUpdate: adminOnly(),
				VerbDelete: adminOnly(),
			},
		},
		"teams": {
			Attributes: []string{"links", "members", "status"},
			Allow: map[Verb]AllowList{
				VerbCreate: nil,
				VerbList:   adminOnly(),
				VerbUpdate: adminOnly(),
				VerbDelete: adminOnly(),
			},
		},
	})
}

// Lookup returns the declaration for a resource type.
func (r *Registry) Lookup(typ string) (Resource, bool) {
	res, ok := r.resources[typ]
	return res, ok
}

// Has reports whether the resource type is declared.
func (r *Registry) Has(typ string) bool {
	_, ok := r.resources[typ]
	return ok
}

// Allow returns the role allow-list for a verb on a resource type.
func (r *Registry) Allow(typ string, verb Verb) AllowList {
	return r.resources[typ].Allow[verb]
}

// Project copies from payload only the attributes declared for the resource
// type. Unknown payload keys are dropped; declared attributes absent from the
// payload stay absent.
func (r *Registry) Project(typ string, payload map[string]any) map[string]any {
	element := map[string]any{}
	for _, attr := range r.resources[typ].Attributes {
		if v, ok := payload[attr]; ok {
			element[attr] = v
		}
	}
	return element
}

// Position renders the resource type the way notification templates expect:
// last character dropped, upper-cased ("participants" -> "PARTICIPANT").
func Position(typ string) string {
	if typ == "" {
		return ""
	}
	return strings.ToUpper(typ[:len(typ)-1])
}
