package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Item 一条待解析的媒体负载。由调用节点构造，在一次解析期间归缓存
// 独占使用；缓存绝不修改它。
type Item struct {
	// Payload 原始字节
	Payload []byte
	// MIMEType 声明的 MIME 类型，留空时从魔数嗅探
	MIMEType string
	// SourceURL 已可公网寻址的来源。非空时直接复用，永不重复上传
	SourceURL string
	// Fingerprint 内容指纹（字节的稳定哈希），留空时按 SHA-256 计算
	Fingerprint string
	// Name 可选的显示名，仅用于日志与生成对象名
	Name string
}

// Reference 两态结果：要么是远端 URI（Remote），要么是原样内联数据
// （Inline），二者必居其一、绝不同时。调用方必须按 IsRemote 分支，
// 不能假设 URI 一定存在。
type Reference struct {
	uri     string
	payload []byte
	mime    string
	remote  bool
}

// Remote 构造一个指向远端对象的引用.
func Remote(uri string) Reference {
	return Reference{uri: uri, remote: true}
}

// Inline 构造一个内联传输的引用（存储不可用时的降级结果）.
func Inline(payload []byte, mimeType string) Reference {
	return Reference{payload: payload, mime: mimeType}
}

// IsRemote 报告引用是否指向远端对象.
func (r Reference) IsRemote() bool { return r.remote }

// URI 返回远端 URI；Inline 引用返回空串.
func (r Reference) URI() string { return r.uri }

// Payload 返回内联字节；Remote 引用返回 nil.
func (r Reference) Payload() []byte { return r.payload }

// MIMEType 返回内联数据的 MIME 类型；Remote 引用返回空串.
func (r Reference) MIMEType() string { return r.mime }

// FingerprintOf 计算媒体负载的内容指纹（SHA-256 十六进制）.
func FingerprintOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DetectMIME 从魔数嗅探常见媒体类型，识别失败时返回空串.
func DetectMIME(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "audio/wav"
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")):
		return "video/mp4"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "video/webm"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return "audio/ogg"
	default:
		return ""
	}
}

// MIMEForFilename 按扩展名返回 MIME 类型，未知扩展返回
// application/octet-stream.
func MIMEForFilename(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "application/octet-stream"
	}
	switch strings.ToLower(name[idx+1:]) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "mov":
		return "video/quicktime"
	case "avi":
		return "video/avi"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// extensionForMIME MIME 类型到对象名扩展的映射.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/quicktime":
		return "mov"
	case "audio/mpeg":
		return "mp3"
	case "audio/wav":
		return "wav"
	case "audio/ogg":
		return "ogg"
	default:
		return "bin"
	}
}
