package cache

import (
	"context"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// ProfileAuthState 账号鉴权快照，仅用于服务端 Redis 缓存
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type ProfileAuthState struct {
	ProfileID          string `json:"profile_id"`
	Role               string `json:"role"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

func profileAuthStateKey(profileID string) string {
	return "auth:profile:" + profileID
}

// BuildProfileAuthState 从账号模型构建鉴权快照
func BuildProfileAuthState(profile *models.Profile) *ProfileAuthState {
	if profile == nil {
		return nil
	}
	state := &ProfileAuthState{
		ProfileID:    profile.ID,
		Role:         profile.Role,
		Status:       profile.Status,
		TokenVersion: profile.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if profile.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = profile.TokenInvalidBefore.Unix()
	}
	return state
}

// GetProfileAuthState 获取账号鉴权快照
func GetProfileAuthState(ctx context.Context, profileID string) (*ProfileAuthState, bool, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, false, nil
	}
	var state ProfileAuthState
	hit, err := GetJSON(ctx, profileAuthStateKey(profileID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetProfileAuthState 写入账号鉴权快照
func SetProfileAuthState(ctx context.Context, state *ProfileAuthState) error {
	if state == nil || state.ProfileID == "" {
		return nil
	}
	return SetJSON(ctx, profileAuthStateKey(state.ProfileID), state, authStateCacheTTL)
}

// DelProfileAuthState 删除账号鉴权快照
func DelProfileAuthState(ctx context.Context, profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return nil
	}
	return Del(ctx, profileAuthStateKey(profileID))
}
