package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/BaSui01/mediaflow/types"
)

// Source 标识被选中的凭证来源.
type Source string

const (
	SourceWorkloadIdentity   Source = "workload_identity"
	SourceServiceAccountFile Source = "service_account_file"
	SourceServiceAccountJSON Source = "service_account_json"
	SourceApplicationDefault Source = "application_default"
)

// cloudScope 解析凭证时请求的 OAuth scope.
const cloudScope = "https://www.googleapis.com/auth/cloud-platform"

// DefaultLocation 默认的 Google Cloud 区域.
const DefaultLocation = "us-central1"

// Config 认证配置：四个互斥、全部可选的凭证描述符.
// 多个描述符同时存在时按固定优先级解析，绝不合并：
// workload identity 配置 → service account 文件 → 内联 service account
// JSON → 仅凭 project id 的 Application Default Credentials.
type Config struct {
	// WorkloadIdentityConfigPath workload identity federation 配置文件路径
	WorkloadIdentityConfigPath string `yaml:"workload_identity_config_path" env:"WORKLOAD_IDENTITY_CONFIG_PATH"`
	// ServiceAccountFilePath service account JSON 文件路径
	ServiceAccountFilePath string `yaml:"service_account_file_path" env:"SERVICE_ACCOUNT_FILE_PATH"`
	// ApplicationCredentialsJSON 内联的 service account JSON（不落日志）
	ApplicationCredentialsJSON string `yaml:"application_credentials_json" env:"APPLICATION_CREDENTIALS_JSON"`
	// ProjectID 项目 ID（ADC 模式必填，其余模式作为回退）
	ProjectID string `yaml:"project_id" env:"PROJECT_ID"`
	// Location 区域，留空时取 DefaultLocation
	Location string `yaml:"location" env:"LOCATION"`
}

// Identity 一次解析的不可变结果：来源标签、有效 project id、区域，
// 以及一个不透明的凭证句柄。句柄永不序列化、永不落日志。
type Identity struct {
	source    Source
	projectID string
	location  string
	ts        oauth2.TokenSource
}

// Source 返回被选中的凭证来源标签.
func (id *Identity) Source() Source { return id.source }

// ProjectID 返回有效的项目 ID.
func (id *Identity) ProjectID() string { return id.projectID }

// Location 返回有效的区域.
func (id *Identity) Location() string { return id.location }

// TokenSource 返回不透明凭证句柄。ADC 模式下为 nil，
// 由下游协作者在调用时自行走默认凭证链。
func (id *Identity) TokenSource() oauth2.TokenSource { return id.ts }

// String 实现 fmt.Stringer，凭证句柄被脱敏.
func (id *Identity) String() string {
	return fmt.Sprintf("identity(source=%s project=%s location=%s)", id.source, id.projectID, id.location)
}

// MarshalJSON 只序列化非敏感字段.
func (id *Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source    Source `json:"source"`
		ProjectID string `json:"project_id"`
		Location  string `json:"location"`
	}{id.source, id.projectID, id.location})
}

// Resolver 按固定优先级从配置中解析出恰好一个可用的凭证来源。
// 解析只做本地文件/JSON 的语法校验，不发起网络请求，也不重试；
// 凭证是否真正被授权要到下游调用失败时才暴露。
type Resolver struct {
	logger *zap.Logger
}

// NewResolver 创建认证解析器.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger.With(zap.String("component", "auth"))}
}

// Resolve 解析配置，返回第一个语法上可用的凭证来源。
// 零个描述符、或所有描述符都未通过语法校验时，返回 CONFIGURATION 错误，
// 错误信息逐一列出每个来源的尝试结果。
func (r *Resolver) Resolve(ctx context.Context, cfg Config) (*Identity, error) {
	location := cfg.Location
	if location == "" {
		location = DefaultLocation
	}

	var attempts []string

	// 1. workload identity federation 配置
	if cfg.WorkloadIdentityConfigPath == "" {
		attempts = append(attempts, "workload_identity: not configured")
	} else if id, reason := r.fromWorkloadIdentity(ctx, cfg, location); reason == "" {
		r.logResolved(id)
		return id, nil
	} else {
		attempts = append(attempts, "workload_identity: "+reason)
	}

	// 2. service account 文件
	if cfg.ServiceAccountFilePath == "" {
		attempts = append(attempts, "service_account_file: not configured")
	} else if id, reason := r.fromServiceAccountFile(ctx, cfg, location); reason == "" {
		r.logResolved(id)
		return id, nil
	} else {
		attempts = append(attempts, "service_account_file: "+reason)
	}

	// 3. 内联 service account JSON
	if cfg.ApplicationCredentialsJSON == "" {
		attempts = append(attempts, "service_account_json: not configured")
	} else if id, reason := r.fromInlineJSON(ctx, cfg, location); reason == "" {
		r.logResolved(id)
		return id, nil
	} else {
		attempts = append(attempts, "service_account_json: "+reason)
	}

	// 4. Application Default Credentials（仅凭 project id，句柄保持惰性）
	if cfg.ProjectID == "" {
		attempts = append(attempts, "application_default: project id not configured")
	} else {
		id := &Identity{source: SourceApplicationDefault, projectID: cfg.ProjectID, location: location}
		r.logResolved(id)
		return id, nil
	}

	return nil, types.NewError(types.ErrConfiguration,
		"no usable credential source: "+strings.Join(attempts, "; "))
}

func (r *Resolver) logResolved(id *Identity) {
	r.logger.Debug("credential source resolved",
		zap.String("source", string(id.source)),
		zap.String("project_id", id.projectID),
		zap.String("location", id.location),
	)
}

// fromWorkloadIdentity 校验 workload identity federation 配置文件。
// 返回空 reason 表示成功；reason 只描述语法问题，绝不包含密钥内容。
func (r *Resolver) fromWorkloadIdentity(ctx context.Context, cfg Config, location string) (*Identity, string) {
	data, err := os.ReadFile(cfg.WorkloadIdentityConfigPath)
	if err != nil {
		return nil, fmt.Sprintf("config file unreadable: %v", err)
	}

	var doc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Sprintf("config file is not valid JSON: %v", err)
	}
	if doc.Type != "external_account" {
		return nil, fmt.Sprintf("config file type is %q, want external_account", doc.Type)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, cloudScope)
	if err != nil {
		return nil, fmt.Sprintf("config file rejected: %v", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, "project id not present in config and not configured"
	}

	return &Identity{
		source:    SourceWorkloadIdentity,
		projectID: projectID,
		location:  location,
		ts:        creds.TokenSource,
	}, ""
}

// fromServiceAccountFile 校验 service account JSON 文件.
func (r *Resolver) fromServiceAccountFile(ctx context.Context, cfg Config, location string) (*Identity, string) {
	data, err := os.ReadFile(cfg.ServiceAccountFilePath)
	if err != nil {
		return nil, fmt.Sprintf("file unreadable: %v", err)
	}
	return r.serviceAccountIdentity(ctx, data, cfg.ProjectID, location, SourceServiceAccountFile)
}

// fromInlineJSON 校验内联的 service account JSON.
func (r *Resolver) fromInlineJSON(ctx context.Context, cfg Config, location string) (*Identity, string) {
	return r.serviceAccountIdentity(ctx, []byte(cfg.ApplicationCredentialsJSON), cfg.ProjectID, location, SourceServiceAccountJSON)
}

func (r *Resolver) serviceAccountIdentity(ctx context.Context, data []byte, fallbackProject, location string, source Source) (*Identity, string) {
	var doc struct {
		Type        string `json:"type"`
		ProjectID   string `json:"project_id"`
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Sprintf("not valid JSON: %v", err)
	}
	if doc.Type != "service_account" {
		return nil, fmt.Sprintf("key type is %q, want service_account", doc.Type)
	}
	if doc.ClientEmail == "" || doc.PrivateKey == "" {
		return nil, "key material incomplete: client_email and private_key are required"
	}

	projectID := doc.ProjectID
	if projectID == "" {
		projectID = fallbackProject
	}
	if projectID == "" {
		return nil, "no project_id in key and none configured"
	}

	creds, err := google.CredentialsFromJSON(ctx, data, cloudScope)
	if err != nil {
		return nil, fmt.Sprintf("key rejected: %v", err)
	}

	return &Identity{
		source:    source,
		projectID: projectID,
		location:  location,
		ts:        creds.TokenSource,
	}, ""
}
