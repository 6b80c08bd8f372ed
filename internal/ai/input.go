package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"
)

// LoadInput 读取 Step1 输入文件（允许注释与尾随逗号）
func LoadInput(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取输入文件失败: %w", err)
	}
	input, err := ParseInput(data)
	if err != nil {
		return nil, fmt.Errorf("输入文件 %s 无效: %w", path, err)
	}
	return input, nil
}

// ParseInput 解析 Step1 输入，必须是 JSON 对象
func ParseInput(data []byte) (map[string]any, error) {
	v, err := DecodeJSON(jsonc.ToJSON(data))
	if err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("输入必须是 JSON 对象")
	}
	return obj, nil
}

// lookup 沿路径取嵌套对象字段
func lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// toNumber 宽松转换为数字，无法转换时为 0
func toNumber(v any) float64 {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}
