package policy

// Resource identifies a controllable resource in the permission catalog.
type Resource string

// Resources with a permission group in the catalog.
const (
	ResourceUsers        Resource = "users"
	ResourceClient       Resource = "client"
	ResourceHost         Resource = "host"
	ResourceVersion      Resource = "version"
	ResourceDeploy       Resource = "deploy"
	ResourceClientConfig Resource = "client-config"
)

// Action identifies an operation on a resource.
type Action string

// Canonical CRUD/lifecycle actions plus the deploy review extras.
const (
	ActionViewAny     Action = "viewAny"
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "forceDelete"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
)

// GuardWeb is the guard tag of every permission in the web console.
const GuardWeb = "web"

// Slug renders the catalog permission slug for a resource/action pair,
// e.g. Slug(ResourceUsers, ActionViewAny) == "users-viewAny".
func Slug(resource Resource, action Action) string {
	return string(resource) + "-" + string(action)
}

// CatalogEntry describes one seeded permission.
type CatalogEntry struct {
	Name      string
	Slug      string
	GuardName string
}

// crudActions are the seven lifecycle actions every resource gets.
var crudActions = []struct {
	action Action
	label  string
}{
	{ActionViewAny, "View Any"},
	{ActionView, "View"},
	{ActionCreate, "Create"},
	{ActionUpdate, "Update"},
	{ActionDelete, "Delete"},
	{ActionRestore, "Restore"},
	{ActionForceDelete, "Force Delete"},
}

// catalogResources lists the resources of the catalog with their display names.
var catalogResources = []struct {
	resource Resource
	label    string
}{
	{ResourceUsers, "Users"},
	{ResourceClient, "Client"},
	{ResourceHost, "Host"},
	{ResourceVersion, "Version"},
	{ResourceDeploy, "Deploy"},
	{ResourceClientConfig, "Client Config"},
}

// Catalog returns the full static permission catalog: the seven lifecycle
// actions for every resource, plus approve/reject for deploys. The catalog is
// reference data; it must be seeded before role grants can be created.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(catalogResources)*len(crudActions)+2)

	for _, res := range catalogResources {
		for _, act := range crudActions {
			entries = append(entries, CatalogEntry{
				Name:      act.label + " " + res.label,
				Slug:      Slug(res.resource, act.action),
				GuardName: GuardWeb,
			})
		}
	}

	entries = append(entries,
		CatalogEntry{Name: "Approve Deploy", Slug: Slug(ResourceDeploy, ActionApprove), GuardName: GuardWeb},
		CatalogEntry{Name: "Reject Deploy", Slug: Slug(ResourceDeploy, ActionReject), GuardName: GuardWeb},
	)

	return entries
}
