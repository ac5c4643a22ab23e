package cli

import (
	"fmt"
	"reflect"

	jsonitor "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

// recordJSON keeps numbers as json.Number so large IDs survive decoding.
var recordJSON = jsonitor.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Records returned by the API. Identifiers arrive as numbers or strings and
// are decoded to strings; every field is optional.

type Account struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Tier        string `mapstructure:"tier"`
	Status      string `mapstructure:"status"`
	Description string `mapstructure:"description"`
	CreatedAt   string `mapstructure:"created_at"`
	UpdatedAt   string `mapstructure:"updated_at"`
}

type Workspace struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	AccountID   string `mapstructure:"account_id"`
	Status      string `mapstructure:"status"`
	Description string `mapstructure:"description"`
	Slug        string `mapstructure:"slug"`
	CreatedAt   string `mapstructure:"created_at"`
	UpdatedAt   string `mapstructure:"updated_at"`
}

type Project struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	WorkspaceID string `mapstructure:"workspace_id"`
	Status      string `mapstructure:"status"`
	Description string `mapstructure:"description"`
	Slug        string `mapstructure:"slug"`
	CreatedAt   string `mapstructure:"created_at"`
	UpdatedAt   string `mapstructure:"updated_at"`
}

type Application struct {
	ID              string `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	ProjectID       string `mapstructure:"project_id"`
	ApplicationType string `mapstructure:"application_type"`
	Type            string `mapstructure:"type"`
	Status          string `mapstructure:"status"`
	SecurityLevel   string `mapstructure:"security_level"`
	NetworkTier     string `mapstructure:"network_tier"`
	Description     string `mapstructure:"description"`
	CreatedAt       string `mapstructure:"created_at"`
	UpdatedAt       string `mapstructure:"updated_at"`
}

// Kind prefers application_type over the legacy type field.
func (a *Application) Kind() string {
	return orDefault(a.ApplicationType, a.Type)
}

type Pipeline struct {
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	ProjectID    string `mapstructure:"project_id"`
	PipelineType string `mapstructure:"pipeline_type"`
	Type         string `mapstructure:"type"`
	IsActive     *bool  `mapstructure:"is_active"`
	Description  string `mapstructure:"description"`
	CreatedAt    string `mapstructure:"created_at"`
	UpdatedAt    string `mapstructure:"updated_at"`
}

// Kind prefers pipeline_type over the legacy type field.
func (p *Pipeline) Kind() string {
	return orDefault(p.PipelineType, p.Type)
}

// StatusText renders is_active as Active, Inactive or Unknown.
func (p *Pipeline) StatusText() string {
	switch {
	case p.IsActive == nil:
		return "Unknown"
	case *p.IsActive:
		return "Active"
	default:
		return "Inactive"
	}
}

type Execution struct {
	ID          string `mapstructure:"id"`
	PipelineID  string `mapstructure:"pipeline_id"`
	Status      string `mapstructure:"status"`
	StartedAt   string `mapstructure:"started_at"`
	CompletedAt string `mapstructure:"completed_at"`
}

type User struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
}

type AuditLog struct {
	ID           string `mapstructure:"id"`
	Timestamp    string `mapstructure:"timestamp"`
	User         string `mapstructure:"user"`
	Username     string `mapstructure:"username"`
	Action       string `mapstructure:"action"`
	Resource     string `mapstructure:"resource"`
	ResourceType string `mapstructure:"resource_type"`
	ResourceID   string `mapstructure:"resource_id"`
	Status       string `mapstructure:"status"`
	Details      string `mapstructure:"details"`
}

// Actor returns user, falling back to username.
func (l *AuditLog) Actor() string {
	return orDefault(l.User, l.Username)
}

// Target returns resource, or resource_type/resource_id.
func (l *AuditLog) Target() string {
	if l.Resource != "" {
		return l.Resource
	}
	if l.ResourceType != "" && l.ResourceID != "" {
		return l.ResourceType + "/" + l.ResourceID
	}
	return orDefault(l.ResourceType, l.ResourceID)
}

type SAMAuditLog struct {
	ID         string `mapstructure:"id"`
	Timestamp  string `mapstructure:"timestamp"`
	Principal  string `mapstructure:"principal"`
	Decision   string `mapstructure:"decision"`
	Permission string `mapstructure:"permission"`
	Resource   string `mapstructure:"resource"`
	Reason     string `mapstructure:"reason"`
}

type AuditStats struct {
	TotalEvents      int64 `mapstructure:"total_events"`
	SuccessfulEvents int64 `mapstructure:"successful_events"`
	FailedEvents     int64 `mapstructure:"failed_events"`
	DeniedEvents     int64 `mapstructure:"denied_events"`
}

// decodeRecord decodes a JSON object into T, converting between numbers and
// strings where needed.
func decodeRecord[T any](raw []byte) (*T, error) {
	var m map[string]any
	if err := recordJSON.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var out T
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       flattenNested,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := d.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

// flattenNested keeps one odd field from failing a whole record. Objects and
// arrays bound for a string field become their JSON text; bound for a scalar
// field they are dropped.
func flattenNested(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Map && from.Kind() != reflect.Slice {
		return data, nil
	}
	target := to
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	switch target.Kind() {
	case reflect.String:
		b, err := recordJSON.Marshal(data)
		if err != nil {
			return "", nil
		}
		return string(b), nil
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if to.Kind() == reflect.Ptr {
			return nil, nil
		}
		return reflect.Zero(to).Interface(), nil
	}
	return data, nil
}

// listItems returns the elements of a list response. The list may be the
// payload itself or sit under one of keys.
func listItems(raw []byte, keys ...string) []gjson.Result {
	root := gjson.ParseBytes(raw)
	if root.IsArray() {
		return root.Array()
	}
	for _, k := range keys {
		if v := root.Get(k); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

// decodeList decodes the elements of a list response.
func decodeList[T any](raw []byte, keys ...string) ([]*T, error) {
	items := listItems(raw, keys...)
	out := make([]*T, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		rec, err := decodeRecord[T]([]byte(it.Raw))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
