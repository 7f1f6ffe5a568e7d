package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 一条路由授权
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// RoleView 角色的继承关系、直接策略与生效策略
type RoleView struct {
	Role      string   `json:"role"`
	Inherits  []string `json:"inherits"`
	Policies  []Policy `json:"policies"`
	Effective []Policy `json:"effective"`
}

// Service 基于 casbin 的角色路由闸门
//
// 策略行形如 role:<角色>, /<区域>/*, <方法>，对象不含 /api/v1 前缀。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务，策略持久化在 casbin_rule 表
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	return nil
}

// EnforceRole 判定账号角色能否以 act 访问 obj；空角色直接拒绝
func (s *Service) EnforceRole(role, obj, act string) (bool, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, nil
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(obj), NormalizeAction(act))
}

// Roles 全部角色视图，按名称排序
func (s *Service) Roles() ([]RoleView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	names, err := s.roleNames()
	if err != nil {
		return nil, err
	}
	views := make([]RoleView, 0, len(names))
	for _, name := range names {
		view, err := s.Role(name)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Role 单个角色视图
func (s *Service) Role(role string) (RoleView, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return RoleView{}, err
	}
	if err := s.ready(); err != nil {
		return RoleView{}, err
	}
	parents, err := s.enforcer.GetRolesForUser(subject)
	if err != nil {
		return RoleView{}, fmt.Errorf("get parent roles failed: %w", err)
	}
	sort.Strings(parents)
	direct, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return RoleView{}, fmt.Errorf("get role policies failed: %w", err)
	}
	effective, err := s.enforcer.GetImplicitPermissionsForUser(subject)
	if err != nil {
		return RoleView{}, fmt.Errorf("get effective policies failed: %w", err)
	}
	return RoleView{
		Role:      subject,
		Inherits:  parents,
		Policies:  convertPolicies(direct),
		Effective: convertPolicies(effective),
	}, nil
}

func (s *Service) roleNames() ([]string, error) {
	seen := make(map[string]struct{})
	grouping, err := s.enforcer.GetNamedGroupingPolicy("g")
	if err != nil {
		return nil, fmt.Errorf("list role links failed: %w", err)
	}
	for _, rule := range grouping {
		for _, name := range rule {
			if strings.HasPrefix(name, rolePrefix) {
				seen[name] = struct{}{}
			}
		}
	}
	policies, err := s.enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("list policies failed: %w", err)
	}
	for _, rule := range policies {
		if len(rule) > 0 && strings.HasPrefix(rule[0], rolePrefix) {
			seen[rule[0]] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object != policies[j].Object {
			return policies[i].Object < policies[j].Object
		}
		return policies[i].Action < policies[j].Action
	})
	return policies
}

// NormalizeRole 角色名转授权主体（role:<角色>）
func NormalizeRole(role string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	normalized = strings.TrimPrefix(normalized, rolePrefix)
	if normalized == "" {
		return "", fmt.Errorf("role is required")
	}
	return rolePrefix + strings.ReplaceAll(normalized, " ", "_"), nil
}

// NormalizeObject 统一授权资源路径，去掉 /api/v1 前缀
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	return normalized
}

// NormalizeAction 统一授权动作
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
