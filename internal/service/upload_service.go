package service

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/logger"

	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

const (
	defaultUploadRoot = "uploads"
	uploadURLPrefix   = "/uploads"
	uploadSniffBytes  = 512
	defaultScene      = "offer"
)

var uploadScenes = []string{defaultScene, "product", "logo"}

// UploadResult 已保存的商户图片
type UploadResult struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadService 商户图片上传，按商户隔离存放
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	var upload config.UploadConfig
	if cfg != nil {
		upload = cfg.Upload
	}
	return &UploadService{cfg: upload}
}

// Save 校验并保存商户上传的图片，返回可公开访问的路径
func (s *UploadService) Save(merchantID string, file *multipart.FileHeader, scene string) (*UploadResult, error) {
	if file == nil {
		return nil, ErrUploadTypeDenied
	}
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" || strings.ContainsAny(merchantID, `/\.`) {
		return nil, ErrMerchantNotFound
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrUploadTooLarge, s.cfg.MaxSize)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 && !matchesExtension(ext, s.cfg.AllowedExtensions) {
		return nil, fmt.Errorf("%w: extension %q", ErrUploadTypeDenied, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contentType, err := s.sniff(src)
	if err != nil {
		return nil, err
	}

	relative := path.Join("merchants", merchantID, uploadScene(scene), time.Now().Format("200601"), uuid.NewString()+ext)
	if err := writeUpload(filepath.Join(s.root(), filepath.FromSlash(relative)), src); err != nil {
		return nil, err
	}
	logger.Debugw("upload_saved", "merchant_id", merchantID, "path", relative, "content_type", contentType)
	return &UploadResult{
		URL:         uploadURLPrefix + "/" + relative,
		ContentType: contentType,
		Size:        file.Size,
	}, nil
}

// sniff 依据文件头判定类型，位图需能解析出尺寸；读完后回到文件开头
func (s *UploadService) sniff(src multipart.File) (string, error) {
	head := make([]byte, uploadSniffBytes)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, contentType) {
		return "", fmt.Errorf("%w: content type %s", ErrUploadTypeDenied, contentType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if contentType == "image/jpeg" || contentType == "image/png" {
		if _, _, err := image.DecodeConfig(src); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUploadTypeDenied, err)
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
	}
	return contentType, nil
}

func (s *UploadService) root() string {
	if root := strings.TrimSpace(s.cfg.Dir); root != "" {
		return root
	}
	return defaultUploadRoot
}

// writeUpload 先写临时文件再改名，避免暴露写了一半的图片
func writeUpload(target string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func uploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, scene := range uploadScenes {
		if scene == value {
			return scene
		}
	}
	return defaultScene
}

func matchesExtension(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, item := range allowed {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" && "."+strings.TrimPrefix(item, ".") == ext {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
