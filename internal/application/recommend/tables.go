package recommend

import "devplan-ai-api/internal/domain/entity"

// baselines 按项目类型与类别给出的基线推荐
var baselines = map[entity.ProjectType]map[Category][]string{
	entity.ProjectTypeWeb: {
		CategoryModels:    {"gpt-4o", "claude-3.5-sonnet", "deepseek-chat"},
		CategoryTools:     {"cursor", "github-copilot", "figma", "postman"},
		CategoryTechStack: {"react", "typescript", "nodejs", "postgresql"},
	},
	entity.ProjectTypeMobile: {
		CategoryModels:    {"gpt-4o-mini", "claude-3.5-sonnet", "gemini-1.5-flash"},
		CategoryTools:     {"android-studio", "xcode", "figma"},
		CategoryTechStack: {"flutter", "react-native", "firebase"},
	},
	entity.ProjectTypeDesktop: {
		CategoryModels:    {"gpt-4o", "claude-3.5-sonnet"},
		CategoryTools:     {"vscode", "github-copilot"},
		CategoryTechStack: {"electron", "tauri", "sqlite"},
	},
	entity.ProjectTypeMiniApp: {
		CategoryModels:    {"deepseek-chat", "qwen-plus", "gpt-4o-mini"},
		CategoryTools:     {"wechat-devtools", "hbuilderx", "figma"},
		CategoryTechStack: {"uni-app", "taro", "vue", "cloudbase"},
	},
	entity.ProjectTypeAPI: {
		CategoryModels:    {"gpt-4o", "deepseek-coder", "claude-3.5-sonnet"},
		CategoryTools:     {"postman", "docker", "github-copilot"},
		CategoryTechStack: {"go", "gin", "postgresql", "redis"},
	},
	entity.ProjectTypeData: {
		CategoryModels:    {"gpt-4o", "claude-3.5-sonnet", "qwen-max"},
		CategoryTools:     {"jupyter", "dbeaver", "tableau"},
		CategoryTechStack: {"python", "pandas", "clickhouse", "apache-airflow"},
	},
	entity.ProjectTypeAI: {
		CategoryModels:    {"gpt-4o", "claude-3.5-sonnet", "gemini-1.5-pro"},
		CategoryTools:     {"jupyter", "langsmith", "cursor"},
		CategoryTechStack: {"python", "fastapi", "langchain", "milvus"},
	},
	entity.ProjectTypeGame: {
		CategoryModels:    {"gpt-4o", "claude-3.5-sonnet"},
		CategoryTools:     {"unity", "blender", "aseprite"},
		CategoryTechStack: {"csharp", "unity-engine", "photon"},
	},
}

// genericBaseline 未知项目类型使用的通用基线
var genericBaseline = map[Category][]string{
	CategoryModels:    {"gpt-4o", "claude-3.5-sonnet"},
	CategoryTools:     {"vscode", "github-copilot"},
	CategoryTechStack: {"typescript", "postgresql"},
}

// keywordCluster 关键词簇，描述命中任一关键词即追加该簇的推荐
type keywordCluster struct {
	name     string
	keywords []string
	items    map[Category][]string
}

// clusters 按固定顺序扫描
var clusters = []keywordCluster{
	{
		name:     "realtime",
		keywords: []string{"实时", "即时", "聊天", "直播", "推送", "realtime", "real-time", "chat", "websocket", "live"},
		items: map[Category][]string{
			CategoryModels:    {"gpt-4o-mini", "gemini-1.5-flash"},
			CategoryTools:     {"wireshark", "k6"},
			CategoryTechStack: {"websocket", "redis", "socket.io"},
		},
	},
	{
		name:     "chinese",
		keywords: []string{"中文", "国内", "微信", "本地化", "汉语", "chinese"},
		items: map[Category][]string{
			CategoryModels:    {"qwen-max", "deepseek-chat", "glm-4"},
			CategoryTools:     {"wechat-devtools"},
			CategoryTechStack: {"aliyun-oss", "jieba"},
		},
	},
	{
		name:     "enterprise",
		keywords: []string{"企业", "复杂", "权限", "审批", "微服务", "大型", "erp", "crm", "enterprise", "microservice"},
		items: map[Category][]string{
			CategoryModels:    {"claude-3.5-sonnet", "gpt-4o"},
			CategoryTools:     {"jira", "sonarqube", "docker"},
			CategoryTechStack: {"kubernetes", "spring-boot", "postgresql", "kafka"},
		},
	},
	{
		name:     "payment",
		keywords: []string{"支付", "付款", "电商", "商城", "购物", "订单", "payment", "e-commerce", "ecommerce", "shop"},
		items: map[Category][]string{
			CategoryModels:    {"gpt-4o", "claude-3.5-sonnet"},
			CategoryTools:     {"stripe-cli", "postman"},
			CategoryTechStack: {"stripe", "alipay-sdk", "wechat-pay", "redis"},
		},
	},
	{
		name:     "ai",
		keywords: []string{"人工智能", "智能", "机器学习", "大模型", "推荐算法", "识别", "ai", "llm", "gpt", "machine learning"},
		items: map[Category][]string{
			CategoryModels:    {"gpt-4o", "claude-3.5-sonnet", "deepseek-chat"},
			CategoryTools:     {"jupyter", "langsmith"},
			CategoryTechStack: {"langchain", "python", "milvus"},
		},
	},
}
