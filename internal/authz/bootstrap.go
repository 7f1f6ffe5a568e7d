package authz

import (
	"fmt"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// RoleMember 所有登录账号共享的基础角色，只读访问商城
const RoleMember = "member"

// BuiltinRoleSeeds 角色矩阵：每个角色只能进入自己的区域，商城对所有登录账号只读
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:     RoleMember,
			Policies: []Policy{{Object: "/store/*", Action: "GET"}},
		},
		{
			Role:     constants.RoleCustomer,
			Inherits: []string{RoleMember},
			Policies: []Policy{{Object: "/customer/*", Action: "*"}},
		},
		{
			Role:     constants.RoleMerchant,
			Inherits: []string{RoleMember},
			Policies: []Policy{{Object: "/merchant/*", Action: "*"}},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{RoleMember},
			Policies: []Policy{{Object: "/admin/*", Action: "*"}},
		},
	}
}

type policyKey struct {
	object string
	action string
}

// BootstrapBuiltinRoles 将预置角色同步到策略表
//
// 缺失的继承与策略会补齐，预置角色名下不在矩阵中的旧行会被删除；重复执行无副作用。
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	added, removed := 0, 0
	for _, seed := range BuiltinRoleSeeds() {
		subject, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		a, r, err := s.syncInherits(subject, seed.Inherits)
		if err != nil {
			return err
		}
		added, removed = added+a, removed+r
		a, r, err = s.syncPolicies(subject, seed.Policies)
		if err != nil {
			return err
		}
		added, removed = added+a, removed+r
	}
	if added > 0 || removed > 0 {
		logger.Infow("authz_builtin_roles_synced", "added", added, "removed", removed)
	}
	return nil
}

func (s *Service) syncInherits(subject string, inherits []string) (int, int, error) {
	want := make(map[string]bool, len(inherits))
	for _, parent := range inherits {
		parentSubject, err := NormalizeRole(parent)
		if err != nil {
			return 0, 0, err
		}
		want[parentSubject] = true
	}
	existing, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0, subject)
	if err != nil {
		return 0, 0, fmt.Errorf("list role links failed: %w", err)
	}
	added, removed := 0, 0
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if want[rule[1]] {
			delete(want, rule[1])
			continue
		}
		ok, err := s.enforcer.RemoveNamedGroupingPolicy("g", rule[0], rule[1])
		if err != nil {
			return added, removed, fmt.Errorf("remove role link failed: %w", err)
		}
		if ok {
			removed++
		}
	}
	for parent := range want {
		ok, err := s.enforcer.AddNamedGroupingPolicy("g", subject, parent)
		if err != nil {
			return added, removed, fmt.Errorf("link role inheritance failed: %w", err)
		}
		if ok {
			added++
		}
	}
	return added, removed, nil
}

func (s *Service) syncPolicies(subject string, policies []Policy) (int, int, error) {
	want := make(map[policyKey]bool, len(policies))
	for _, policy := range policies {
		action := NormalizeAction(policy.Action)
		if action == "" {
			return 0, 0, fmt.Errorf("builtin policy action is required")
		}
		want[policyKey{object: NormalizeObject(policy.Object), action: action}] = true
	}
	existing, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return 0, 0, fmt.Errorf("list role policies failed: %w", err)
	}
	added, removed := 0, 0
	for _, rule := range existing {
		if len(rule) < 3 {
			continue
		}
		key := policyKey{object: rule[1], action: rule[2]}
		if want[key] {
			delete(want, key)
			continue
		}
		ok, err := s.enforcer.RemovePolicy(rule[0], rule[1], rule[2])
		if err != nil {
			return added, removed, fmt.Errorf("remove stale policy failed: %w", err)
		}
		if ok {
			removed++
		}
	}
	for key := range want {
		ok, err := s.enforcer.AddPolicy(subject, key.object, key.action)
		if err != nil {
			return added, removed, fmt.Errorf("add builtin policy failed: %w", err)
		}
		if ok {
			added++
		}
	}
	return added, removed, nil
}
