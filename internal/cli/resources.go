package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/securepipe/securepipe/internal/config"
	"github.com/spf13/cobra"
)

var (
	accountTiers     = []string{"FREE", "PAID", "ENTERPRISE"}
	applicationTypes = []string{"web_application", "api_service", "microservice", "database", "container",
		"serverless", "desktop", "mobile", "iot", "custom"}
	securityLevels = []string{"low", "medium", "high", "critical"}
	pipelineTypes  = []string{"security_scan", "compliance_check", "deployment", "testing", "custom"}
)

var (
	accountParent = &parentRef{
		noun: "account", flag: "account-id", short: "a", field: "account_id",
		defaultOf: func(s *config.Session) string { return s.DefaultAccountID.String() },
	}
	workspaceParent = &parentRef{
		noun: "workspace", flag: "workspace-id", short: "w", field: "workspace_id",
		defaultOf: func(s *config.Session) string { return s.DefaultWorkspaceID.String() },
	}
	projectParent = &parentRef{
		noun: "project", flag: "project-id", short: "p", field: "project_id",
		defaultOf: func(s *config.Session) string { return s.DefaultProjectID.String() },
	}
)

var (
	descriptionFlag = flagSpec{name: "description", short: "d", usage: "Description", field: "description"}
	slugFlag        = flagSpec{name: "slug", short: "s", usage: "Slug", field: "slug"}
)

// Request bodies for create. Optional fields are omitted when empty.

type accountCreate struct {
	Name        string `json:"name" validate:"required"`
	Tier        string `json:"tier" validate:"required,oneof=FREE PAID ENTERPRISE"`
	Description string `json:"description,omitempty"`
}

type workspaceCreate struct {
	Name        string `json:"name" validate:"required"`
	AccountID   int64  `json:"account_id" validate:"gt=0"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

type projectCreate struct {
	Name        string `json:"name" validate:"required"`
	WorkspaceID int64  `json:"workspace_id" validate:"gt=0"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

type applicationCreate struct {
	Name                     string `json:"name" validate:"required"`
	ApplicationType          string `json:"application_type" validate:"required"`
	SecurityLevel            string `json:"security_level" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Description              string `json:"description,omitempty"`
	SecurityScanEnabled      bool   `json:"security_scan_enabled"`
	SecurityScanFrequency    string `json:"security_scan_frequency"`
	NetworkIsolationRequired bool   `json:"network_isolation_required"`
	NetworkPolicyEnforced    bool   `json:"network_policy_enforced"`
	ComplianceScanEnabled    bool   `json:"compliance_scan_enabled"`
	ComplianceScanFrequency  string `json:"compliance_scan_frequency"`
	CrossBoundaryEnabled     bool   `json:"cross_boundary_enabled"`
	ServiceDiscoveryEnabled  bool   `json:"service_discovery_enabled"`
}

type pipelineCreate struct {
	Name          string         `json:"name" validate:"required"`
	ProjectID     int64          `json:"project_id" validate:"gt=0"`
	PipelineType  string         `json:"pipeline_type" validate:"required,oneof=security_scan compliance_check deployment testing custom"`
	Description   string         `json:"description,omitempty"`
	Configuration map[string]any `json:"configuration" validate:"required"`
}

// resourceCommands returns the CRUD command groups in hierarchy order.
func resourceCommands(a *App) []*cobra.Command {
	return []*cobra.Command{
		accountResource.command(a),
		workspaceResource.command(a),
		projectResource.command(a),
		applicationResource.command(a),
		pipelineResource().command(a),
	}
}

var accountResource = &resource[Account]{
	name:   "account",
	plural: "accounts",
	createFlags: []flagSpec{
		{name: "tier", usage: "Account tier", field: "tier", def: "FREE", choices: accountTiers, upper: true},
		descriptionFlag,
	},
	updateFlags: []flagSpec{
		descriptionFlag,
		{name: "tier", usage: "New account tier", field: "tier", choices: accountTiers, upper: true},
	},
	buildCreate: func(in createInput) (any, map[string]string, error) {
		return &accountCreate{
			Name:        in.Name,
			Tier:        in.Values["tier"],
			Description: in.Values["description"],
		}, nil, nil
	},
	printItem: func(w io.Writer, r *Account) {
		fmt.Fprintf(w, "  🏢 %s (ID: %s)\n", orUnknown(r.Name), orUnknown(r.ID))
	},
	printDetails: func(w io.Writer, r *Account) {
		headLabel.Fprintln(w, "🏢 Account Details:")
		fmt.Fprintf(w, "  📛 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "  🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "  📊 Tier: %s\n", orUnknown(r.Tier))
		fmt.Fprintf(w, "  📊 Status: %s\n", orUnknown(r.Status))
		optionalLine(w, "  📝 Description", r.Description)
		optionalLine(w, "  📅 Created", r.CreatedAt)
		optionalLine(w, "  📅 Updated", r.UpdatedAt)
	},
	printCreated: func(w io.Writer, r *Account, in createInput) {
		fmt.Fprintf(w, "🏢 Name: %s\n", orDefault(r.Name, in.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "💳 Tier: %s\n", orDefault(r.Tier, in.Values["tier"]))
	},
	printUpdated: func(w io.Writer, r *Account) {
		fmt.Fprintf(w, "🏢 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
	},
}

var workspaceResource = &resource[Workspace]{
	name:        "workspace",
	plural:      "workspaces",
	parent:      accountParent,
	createFlags: []flagSpec{descriptionFlag, slugFlag},
	updateFlags: []flagSpec{descriptionFlag, slugFlag},
	buildCreate: func(in createInput) (any, map[string]string, error) {
		accountID, err := parseID("account", in.ParentID)
		if err != nil {
			return nil, nil, err
		}
		return &workspaceCreate{
			Name:        in.Name,
			AccountID:   accountID,
			Description: in.Values["description"],
			Slug:        in.Values["slug"],
		}, nil, nil
	},
	printItem: func(w io.Writer, r *Workspace) {
		fmt.Fprintf(w, "  🏢 %s (ID: %s)\n", orUnknown(r.Name), orUnknown(r.ID))
	},
	printDetails: func(w io.Writer, r *Workspace) {
		headLabel.Fprintln(w, "🏢 Workspace Details:")
		fmt.Fprintf(w, "  📛 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "  🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "  📁 Account: %s\n", orUnknown(r.AccountID))
		fmt.Fprintf(w, "  📊 Status: %s\n", orUnknown(r.Status))
		optionalLine(w, "  📝 Description", r.Description)
		optionalLine(w, "  🏷️  Slug", r.Slug)
		optionalLine(w, "  📅 Created", r.CreatedAt)
		optionalLine(w, "  📅 Updated", r.UpdatedAt)
	},
	printCreated: func(w io.Writer, r *Workspace, in createInput) {
		fmt.Fprintf(w, "🏢 Name: %s\n", orDefault(r.Name, in.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "📁 Account: %s\n", orDefault(r.AccountID, in.ParentID))
		optionalLine(w, "📝 Description", r.Description)
	},
	printUpdated: func(w io.Writer, r *Workspace) {
		fmt.Fprintf(w, "🏢 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
	},
}

var projectResource = &resource[Project]{
	name:        "project",
	plural:      "projects",
	parent:      workspaceParent,
	createFlags: []flagSpec{descriptionFlag, slugFlag},
	updateFlags: []flagSpec{descriptionFlag, slugFlag},
	buildCreate: func(in createInput) (any, map[string]string, error) {
		workspaceID, err := parseID("workspace", in.ParentID)
		if err != nil {
			return nil, nil, err
		}
		return &projectCreate{
			Name:        in.Name,
			WorkspaceID: workspaceID,
			Description: in.Values["description"],
			Slug:        in.Values["slug"],
		}, nil, nil
	},
	printItem: func(w io.Writer, r *Project) {
		fmt.Fprintf(w, "  📁 %s (ID: %s)\n", orUnknown(r.Name), orUnknown(r.ID))
	},
	printDetails: func(w io.Writer, r *Project) {
		headLabel.Fprintln(w, "📁 Project Details:")
		fmt.Fprintf(w, "  📛 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "  🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "  🏢 Workspace: %s\n", orUnknown(r.WorkspaceID))
		fmt.Fprintf(w, "  📊 Status: %s\n", orUnknown(r.Status))
		optionalLine(w, "  📝 Description", r.Description)
		optionalLine(w, "  🏷️  Slug", r.Slug)
		optionalLine(w, "  📅 Created", r.CreatedAt)
		optionalLine(w, "  📅 Updated", r.UpdatedAt)
	},
	printCreated: func(w io.Writer, r *Project, in createInput) {
		fmt.Fprintf(w, "📁 Name: %s\n", orDefault(r.Name, in.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "🏢 Workspace: %s\n", orDefault(r.WorkspaceID, in.ParentID))
		optionalLine(w, "📝 Description", r.Description)
	},
	printUpdated: func(w io.Writer, r *Project) {
		fmt.Fprintf(w, "📁 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
	},
}

var applicationResource = &resource[Application]{
	name:   "application",
	plural: "applications",
	parent: projectParent,
	listFlags: []flagSpec{
		{name: "type", short: "t", usage: "Filter by application type", field: "type"},
		{name: "status", short: "s", usage: "Filter by application status", field: "status"},
	},
	createFlags: []flagSpec{
		{name: "type", short: "t", usage: "Application type", def: "web_application", choices: applicationTypes},
		{name: "security-level", short: "s", usage: "Security level", def: "medium", choices: securityLevels},
		descriptionFlag,
	},
	updateFlags: []flagSpec{
		descriptionFlag,
		{name: "type", short: "t", usage: "New application type", field: "type", choices: applicationTypes},
		{name: "security-level", short: "s", usage: "New security level", field: "security_level", choices: securityLevels},
	},
	buildCreate: func(in createInput) (any, map[string]string, error) {
		body := &applicationCreate{
			Name:                     in.Name,
			ApplicationType:          strings.ToUpper(in.Values["type"]),
			SecurityLevel:            strings.ToUpper(in.Values["security-level"]),
			Description:              in.Values["description"],
			SecurityScanEnabled:      true,
			SecurityScanFrequency:    "weekly",
			NetworkIsolationRequired: false,
			NetworkPolicyEnforced:    true,
			ComplianceScanEnabled:    true,
			ComplianceScanFrequency:  "monthly",
			CrossBoundaryEnabled:     false,
			ServiceDiscoveryEnabled:  true,
		}
		return body, map[string]string{"project_id": in.ParentID}, nil
	},
	printItem: func(w io.Writer, r *Application) {
		fmt.Fprintf(w, "  📱 %s (ID: %s)\n", orUnknown(r.Name), orUnknown(r.ID))
		fmt.Fprintf(w, "     🔧 Type: %s\n", orUnknown(r.Kind()))
		fmt.Fprintf(w, "     📊 Status: %s\n", orUnknown(r.Status))
		fmt.Fprintf(w, "     🛡️  Security: %s\n", orUnknown(r.SecurityLevel))
	},
	printDetails: func(w io.Writer, r *Application) {
		headLabel.Fprintln(w, "📱 Application Details:")
		fmt.Fprintf(w, "  📛 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "  🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "  📁 Project: %s\n", orUnknown(r.ProjectID))
		fmt.Fprintf(w, "  🔧 Type: %s\n", orUnknown(r.Kind()))
		fmt.Fprintf(w, "  📊 Status: %s\n", orUnknown(r.Status))
		fmt.Fprintf(w, "  🛡️  Security Level: %s\n", orUnknown(r.SecurityLevel))
		fmt.Fprintf(w, "  🌐 Network Tier: %s\n", orUnknown(r.NetworkTier))
		optionalLine(w, "  📝 Description", r.Description)
		optionalLine(w, "  📅 Created", r.CreatedAt)
		optionalLine(w, "  📅 Updated", r.UpdatedAt)
	},
	printCreated: func(w io.Writer, r *Application, in createInput) {
		fmt.Fprintf(w, "📛 Name: %s\n", orDefault(r.Name, in.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
		fmt.Fprintf(w, "📁 Project: %s\n", orDefault(r.ProjectID, in.ParentID))
		fmt.Fprintf(w, "🔧 Type: %s\n", orDefault(r.Kind(), in.Values["type"]))
		fmt.Fprintf(w, "🛡️  Security Level: %s\n", orDefault(r.SecurityLevel, in.Values["security-level"]))
		fmt.Fprintf(w, "📊 Status: %s\n", orDefault(r.Status, "draft"))
		optionalLine(w, "📝 Description", r.Description)
	},
	printUpdated: func(w io.Writer, r *Application) {
		fmt.Fprintf(w, "📛 Name: %s\n", orUnknown(r.Name))
		fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
	},
}
