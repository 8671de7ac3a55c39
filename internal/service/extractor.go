package service

import (
	"io"
	"strings"
	"unicode"
)

// TextExtractor 教材文本抽取边界
// PDF 解析由外部协作方（独立抽取服务或离线工具）完成，
// 这里只约定拿到纯文本的方式
type TextExtractor interface {
	Extract(r io.Reader) (string, error)
}

// PlainTextExtractor 直接把文件内容当作 UTF-8 文本读取，
// 过滤掉不可打印字符，用于 .txt 教材与测试
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(data))
	for _, r := range string(data) {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
