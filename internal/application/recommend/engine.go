// Package recommend 基于项目类型与描述关键词的推荐引擎
package recommend

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"devplan-ai-api/internal/domain/entity"
)

// MaxItems 推荐结果上限
const MaxItems = 5

// Category 推荐类别
type Category string

const (
	CategoryModels    Category = "models"
	CategoryTools     Category = "tools"
	CategoryTechStack Category = "techstack"
)

// ParseCategory 解析类别字符串
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryModels, CategoryTools, CategoryTechStack:
		return c, nil
	case "tech-stack", "tech_stack":
		return CategoryTechStack, nil
	default:
		return "", fmt.Errorf("unknown recommendation category %q", s)
	}
}

// Recommend 计算推荐项 ID 列表
// 结果仅由 (description, projectType, category) 决定：基线在前，命中的关键词簇按固定顺序追加，去重后截断到 MaxItems。
func Recommend(description string, projectType entity.ProjectType, category Category) []string {
	base, ok := baselines[projectType]
	if !ok {
		base = genericBaseline
	}

	out := make([]string, 0, MaxItems)
	seen := make(map[string]struct{}, MaxItems*2)
	add := func(items []string) {
		for _, item := range items {
			if len(out) >= MaxItems {
				return
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}

	add(base[category])
	for _, cl := range matchedClusters(description) {
		add(cl.items[category])
	}
	return out
}

// Scored 返回带排名分数的推荐结果，分数按位置递减
func Scored(description string, projectType entity.ProjectType, category Category) []entity.Recommendation {
	ids := Recommend(description, projectType, category)
	out := make([]entity.Recommendation, 0, len(ids))
	for i, id := range ids {
		out = append(out, entity.Recommendation{
			Category: string(category),
			ItemID:   id,
			Score:    float64(MaxItems-i) / MaxItems,
		})
	}
	return out
}

// matchedClusters 返回描述命中的关键词簇（大小写不敏感，保持扫描顺序）
func matchedClusters(description string) []keywordCluster {
	text := strings.ToLower(description)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var matched []keywordCluster
	for _, cl := range clusters {
		for _, kw := range cl.keywords {
			if keywordHit(text, kw) {
				matched = append(matched, cl)
				break
			}
		}
	}
	return matched
}

// asciiPatterns 英文关键词按单词边界匹配（允许复数 s），避免 "ai" 命中 "email"
var asciiPatterns = compileASCIIPatterns()

func compileASCIIPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, cl := range clusters {
		for _, kw := range cl.keywords {
			if isASCII(kw) {
				out[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `s?\b`)
			}
		}
	}
	return out
}

// keywordHit 中文关键词按子串匹配，英文关键词按单词匹配
func keywordHit(text, kw string) bool {
	if re, ok := asciiPatterns[kw]; ok {
		return re.MatchString(text)
	}
	return strings.Contains(text, kw)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// ClusterNames 返回命中的关键词簇名称
func ClusterNames(description string) []string {
	matched := matchedClusters(description)
	names := make([]string, 0, len(matched))
	for _, cl := range matched {
		names = append(names, cl.name)
	}
	return names
}
