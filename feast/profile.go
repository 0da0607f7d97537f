package feast

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/pkg/conv"
)

// EntityKey 学生实体的主键名
const EntityKey = "usn"

// profileFields 可以从在线存储补全的画像字段
var profileFields = []string{
	core.FieldBranch,
	core.FieldGender,
	core.FieldCGPA,
	core.FieldBacklogs,
	core.FieldDSAScore,
	core.FieldProjects,
	core.FieldLeetCodeProblems,
	core.FieldCertifications,
	core.FieldInternship,
	core.FieldCommunicationScore,
}

// ProfileSource 按学号从 Feast 在线存储补全画像。
//
// 规则：
//   - 请求没有 USN 时原样返回
//   - 只填充调用方缺失的字段，请求里显式给出的值始终优先
//   - 查询失败只记日志，返回原始画像
type ProfileSource struct {
	client      Client
	project     string
	featureView string
	logger      *zap.Logger
}

// NewProfileSource 创建画像补全器
func NewProfileSource(client Client, project, featureView string, logger *zap.Logger) *ProfileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileSource{
		client:      client,
		project:     project,
		featureView: featureView,
		logger:      logger,
	}
}

// Enrich 返回补全后的画像（不修改 raw）
func (s *ProfileSource) Enrich(ctx context.Context, raw core.RawProfile) core.RawProfile {
	if s == nil || s.client == nil || !raw.Has(core.FieldUSN) {
		return raw
	}

	missing := make([]string, 0, len(profileFields))
	for _, field := range profileFields {
		if !raw.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return raw
	}

	usn := conv.ToString(raw[core.FieldUSN])
	features := make([]string, len(missing))
	for i, field := range missing {
		features[i] = s.featureView + ":" + field
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]any{{EntityKey: usn}},
		Project:    s.project,
	})
	if err != nil {
		s.logger.Warn("feast profile lookup failed", zap.String("usn", usn), zap.Error(err))
		return raw
	}
	if len(resp.FeatureVectors) == 0 {
		return raw
	}

	out := raw.Clone()
	values := resp.FeatureVectors[0].Values
	filled := make([]string, 0, len(missing))
	for i, field := range missing {
		if v, ok := values[features[i]]; ok && v != nil {
			out[field] = v
			filled = append(filled, field)
		}
	}
	s.logger.Debug("profile enriched from feast", zap.String("usn", usn), zap.Strings("fields", filled))
	return out
}
