package extract

import "devplan-ai-api/internal/domain/entity"

// DefaultClarification 默认澄清问题
func DefaultClarification() []entity.ClarificationQuestion {
	return []entity.ClarificationQuestion{
		{ID: "q1", Question: "项目的目标用户是谁？", Placeholder: "例如：中小企业的财务人员", Required: true},
		{ID: "q2", Question: "项目需要解决的核心问题是什么？", Placeholder: "描述用户当前遇到的主要痛点", Required: true},
		{ID: "q3", Question: "有哪些必须具备的核心功能？", Placeholder: "列出 3-5 个最重要的功能", Required: true},
		{ID: "q4", Question: "预期的用户规模和性能要求是怎样的？", Placeholder: "例如：日活 1 万，接口响应小于 200ms", Required: false},
		{ID: "q5", Question: "项目有哪些时间、预算或技术上的限制？", Placeholder: "例如：3 个月内上线，必须部署在私有云", Required: false},
	}
}

// DefaultFeatures 默认功能列表
func DefaultFeatures() []entity.FeatureItem {
	return []entity.FeatureItem{
		{ID: "feature-1", Name: "用户注册与登录", Description: "支持账号注册、登录、找回密码", Priority: "high", Category: "用户管理"},
		{ID: "feature-2", Name: "个人资料管理", Description: "查看和编辑个人信息", Priority: "medium", Category: "用户管理"},
		{ID: "feature-3", Name: "核心业务流程", Description: "项目主要业务功能的创建、查看、编辑与删除", Priority: "high", Category: "核心功能"},
		{ID: "feature-4", Name: "消息通知", Description: "重要事件的站内通知与提醒", Priority: "medium", Category: "辅助功能"},
		{ID: "feature-5", Name: "数据统计", Description: "关键业务指标的汇总与图表展示", Priority: "low", Category: "数据分析"},
	}
}

// DefaultTechStack 默认技术栈建议
func DefaultTechStack() []entity.TechStackItem {
	return []entity.TechStackItem{
		{ID: "tech-1", Name: "React", Category: "前端", Description: "组件化的前端 UI 框架", Reason: "生态成熟，社区资源丰富"},
		{ID: "tech-2", Name: "Node.js", Category: "后端", Description: "基于 JavaScript 的服务端运行时", Reason: "前后端语言统一，开发效率高"},
		{ID: "tech-3", Name: "PostgreSQL", Category: "数据库", Description: "开源关系型数据库", Reason: "功能完善，稳定可靠"},
		{ID: "tech-4", Name: "Docker", Category: "部署", Description: "容器化部署工具", Reason: "环境一致，便于交付与扩展"},
	}
}
