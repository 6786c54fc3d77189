package dao

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// JSON 以原始字节读写的JSON列，投递日志的载荷字段使用
// 写入方保证内容已是合法JSON，这里不做语法校验
type JSON []byte

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, errors.New("JSON载荷为空")
	}
	return string(j), nil
}

// Scan 实现 sql.Scanner 接口，兼容驱动返回[]byte或string两种形态
func (j *JSON) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("无法把 %T 扫描成JSON列", value)
	}
	return nil
}

// MarshalJSON 原样输出，避免[]byte默认的base64编码
func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("JSON: 向空指针反序列化")
	}
	*j = append((*j)[0:0], data...)
	return nil
}
