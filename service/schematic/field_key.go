package schematic

// FieldKey 字段键，系统字段以下划线开头
type FieldKey string

// 系统字段键
const (
	KeyID        FieldKey = "_id"
	KeyOwner     FieldKey = "_owner"
	KeyCreatedAt FieldKey = "_createdAt"
	KeyUpdatedAt FieldKey = "_updatedAt"
)

// ArrayContextSuffix 外部键以此结尾时表示写入数组上下文
const ArrayContextSuffix = "[]"

// SystemFieldKeys 系统字段，顺序即其在字段表中的索引
var SystemFieldKeys = []FieldKey{KeyID, KeyOwner, KeyCreatedAt, KeyUpdatedAt}

// IsSystem 是否为系统保留字段
func (k FieldKey) IsSystem() bool {
	switch k {
	case KeyID, KeyOwner, KeyCreatedAt, KeyUpdatedAt:
		return true
	}
	return false
}

func (k FieldKey) String() string {
	return string(k)
}
