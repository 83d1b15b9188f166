package daemon

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/deploypanel/deploypanel/internal/db/models"
	"github.com/deploypanel/deploypanel/internal/policy"
)

// Default admin credentials for first boot. Change the password right after.
const (
	defaultAdminEmail    = "admin@deploypanel.local"
	defaultAdminPassword = "changeme"
)

// developerGrants are the permission slugs granted to the developer role:
// full lifecycle on versions and deploys, nothing else.
var developerGrants = buildGrants(
	[]policy.Resource{policy.ResourceVersion, policy.ResourceDeploy},
	[]policy.Action{policy.ActionViewAny, policy.ActionView, policy.ActionCreate, policy.ActionUpdate, policy.ActionDelete},
)

// clientGrants are the permission slugs granted to the client role: they see
// and review the deploys targeting their environment.
var clientGrants = []string{
	policy.Slug(policy.ResourceDeploy, policy.ActionViewAny),
	policy.Slug(policy.ResourceDeploy, policy.ActionView),
	policy.Slug(policy.ResourceDeploy, policy.ActionApprove),
	policy.Slug(policy.ResourceDeploy, policy.ActionReject),
}

func buildGrants(resources []policy.Resource, actions []policy.Action) []string {
	slugs := make([]string, 0, len(resources)*len(actions))
	for _, r := range resources {
		for _, a := range actions {
			slugs = append(slugs, policy.Slug(r, a))
		}
	}

	return slugs
}

// seed populates an empty database with the role set, the permission catalog,
// the role grants and a default admin account. Each step is count-guarded so
// seeding is idempotent across restarts.
func seed(db *gorm.DB) error {
	if err := seedRoles(db); err != nil {
		return err
	}

	if err := seedPermissions(db); err != nil {
		return err
	}

	if err := seedGrants(db); err != nil {
		return err
	}

	return seedAdmin(db)
}

func seedRoles(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roles := []models.Role{
		{Name: "Admin", Slug: models.RoleAdmin},
		{Name: "Developer", Slug: models.RoleDeveloper},
		{Name: "Client", Slug: models.RoleClient},
	}

	return db.Create(&roles).Error
}

func seedPermissions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Permission{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	catalog := policy.Catalog()
	permissions := make([]models.Permission, 0, len(catalog))

	for _, entry := range catalog {
		permissions = append(permissions, models.Permission{
			Name:      entry.Name,
			Slug:      entry.Slug,
			GuardName: entry.GuardName,
		})
	}

	return db.Create(&permissions).Error
}

func seedGrants(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.RolePermission{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// Admin gets the full catalog.
	var admin models.Role
	if err := db.Where("slug = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return err
	}

	var permissions []models.Permission
	if err := db.Find(&permissions).Error; err != nil {
		return err
	}

	grants := make([]models.RolePermission, 0, len(permissions))
	for _, p := range permissions {
		grants = append(grants, models.RolePermission{RoleID: admin.ID, PermissionID: p.ID})
	}

	if err := db.Create(&grants).Error; err != nil {
		return err
	}

	if err := grantSlugs(db, models.RoleDeveloper, developerGrants); err != nil {
		return err
	}

	return grantSlugs(db, models.RoleClient, clientGrants)
}

func grantSlugs(db *gorm.DB, roleSlug string, slugs []string) error {
	var role models.Role
	if err := db.Where("slug = ?", roleSlug).First(&role).Error; err != nil {
		return err
	}

	var permissions []models.Permission
	if err := db.Where("slug IN ?", slugs).Find(&permissions).Error; err != nil {
		return err
	}

	grants := make([]models.RolePermission, 0, len(permissions))
	for _, p := range permissions {
		grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
	}

	return db.Create(&grants).Error
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var admin models.Role
	if err := db.Where("slug = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return err
	}

	user := models.User{
		Name:     "Administrator",
		Email:    defaultAdminEmail,
		Password: models.HashPassword(defaultAdminPassword),
		RoleID:   &admin.ID,
	}

	return db.Create(&user).Error
}

// SeedDemo loads a demo data set: one host and a batch of named client
// environments pointing at it. Intended for dev mode only.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Client{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	credentials, err := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	if err != nil {
		return err
	}

	host := models.Host{IP: "177.136.251.75", Credentials: string(credentials)}
	if err := db.Create(&host).Error; err != nil {
		return err
	}

	names := []string{
		"Koch", "Veneza", "Kikker", "Dalben", "Mercale", "Heineken Tenda",
		"Demo", "Ivasko", "Danny Cosmeticos", "Heineken Hiper Ideal",
		"Araujo", "Tim log", "Rede Pas",
	}

	for _, name := range names {
		client := models.Client{Name: name, Status: models.ClientStatusActive}
		if err := db.Create(&client).Error; err != nil {
			return err
		}

		config := models.ClientConfig{
			ClientID:   client.ID,
			HostID:     host.ID,
			ConfigKey:  "portinair-key",
			DBHost:     host.IP,
			DBPort:     "5432",
			DBUsername: "user",
			DBPassword: "admin",
		}
		if err := db.Create(&config).Error; err != nil {
			return err
		}
	}

	return nil
}
