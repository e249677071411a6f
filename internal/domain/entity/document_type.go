package entity

// DocumentType 可生成的文档类型
type DocumentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var documentTypes = []DocumentType{
	{ID: "prd", Name: "产品需求文档", Description: "产品目标、用户画像、功能需求与验收标准"},
	{ID: "tech-design", Name: "技术设计文档", Description: "系统架构、模块划分、数据模型与关键技术方案"},
	{ID: "api-spec", Name: "接口文档", Description: "对外接口列表、请求响应结构与错误码"},
	{ID: "user-stories", Name: "用户故事", Description: "以用户视角描述的需求条目与验收条件"},
	{ID: "test-plan", Name: "测试计划", Description: "测试范围、测试策略、用例设计与质量标准"},
}

// DocumentTypes 返回所有已知文档类型
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypes))
	copy(out, documentTypes)
	return out
}

// LookupDocumentType 按 ID 查找文档类型
func LookupDocumentType(id string) (DocumentType, bool) {
	for _, dt := range documentTypes {
		if dt.ID == id {
			return dt, true
		}
	}
	return DocumentType{}, false
}
