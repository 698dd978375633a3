package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ruben1877/360spyne/config"
	"github.com/Ruben1877/360spyne/model"
	"github.com/Ruben1877/360spyne/service"
	"github.com/Ruben1877/360spyne/utils"
)

type RenderHandler struct {
	cfg           *config.Config
	redisService  *service.RedisService
	renderService *service.RenderService
}

func NewRenderHandler(cfg *config.Config, redis *service.RedisService, render *service.RenderService) *RenderHandler {
	return &RenderHandler{
		cfg:           cfg,
		redisService:  redis,
		renderService: render,
	}
}

// Render 处理渲染请求：车身图 + 前景蒙版 + 渲染参数
func (h *RenderHandler) Render(c *gin.Context) {
	imageFile, err := c.FormFile("image")
	if err != nil {
		utils.Logger.Error("failed to get uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传车身图片（image）",
			Error:   err.Error(),
		})
		return
	}

	maskFile, err := c.FormFile("mask")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传前景蒙版（mask），尺寸须与图片一致",
			Error:   err.Error(),
		})
		return
	}

	// 验证文件大小
	if imageFile.Size > h.cfg.Upload.MaxSize || maskFile.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return
	}

	// 验证文件类型（图片和蒙版均校验）
	if !h.isAllowedType(imageFile.Header.Get("Content-Type")) || !h.isAllowedType(maskFile.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型，仅支持 JPEG/PNG",
		})
		return
	}

	opts := h.parseOptions(c)

	// 保存上传文件
	id := utils.GenerateID()
	imagePath := filepath.Join(h.cfg.Upload.UploadDir, fmt.Sprintf("%d%s", id, filepath.Ext(imageFile.Filename)))
	maskPath := filepath.Join(h.cfg.Upload.UploadDir, fmt.Sprintf("%d_mask%s", id, filepath.Ext(maskFile.Filename)))

	if err := c.SaveUploadedFile(imageFile, imagePath); err != nil {
		h.internalError(c, "保存文件失败", err)
		return
	}
	if err := c.SaveUploadedFile(maskFile, maskPath); err != nil {
		h.internalError(c, "保存文件失败", err)
		return
	}

	if h.cfg.Render.CleanupTempFiles {
		defer func() {
			for _, p := range []string{imagePath, maskPath} {
				if err := os.Remove(p); err != nil {
					utils.Logger.Warn("failed to delete temp file",
						zap.String("file", p), zap.Error(err))
				}
			}
		}()
	}

	// 计算MD5，缓存键由图片、蒙版内容和参数指纹共同决定
	md5, err := utils.FileMD5(imagePath)
	if err != nil {
		h.internalError(c, "计算文件哈希失败", err)
		return
	}
	maskMD5, err := utils.FileMD5(maskPath)
	if err != nil {
		h.internalError(c, "计算文件哈希失败", err)
		return
	}
	key := cacheKey(md5, maskMD5, opts)

	ctx := context.Background()
	cached, err := h.redisService.GetRenderResult(ctx, key)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
	}
	if cached != nil {
		utils.Logger.Info("cache hit", zap.String("key", key))
		c.JSON(http.StatusOK, model.RenderResponse{
			Success: true,
			Message: "渲染成功（来自缓存）",
			Data:    cached,
		})
		return
	}

	result, err := h.renderService.ProcessFiles(imagePath, maskPath, md5, key, opts)
	if err != nil {
		utils.Logger.Error("failed to render image", zap.Error(err))
		status := http.StatusInternalServerError
		if service.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, model.ErrorResponse{
			Success: false,
			Message: "渲染失败",
			Error:   err.Error(),
		})
		return
	}

	if err := h.redisService.SetRenderResult(ctx, key, result); err != nil {
		utils.Logger.Warn("failed to set cache", zap.Error(err))
	}

	c.JSON(http.StatusOK, model.RenderResponse{
		Success: true,
		Message: "渲染成功",
		Data:    result,
	})
}

// GetByKey 根据缓存键查询渲染结果
func (h *RenderHandler) GetByKey(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "缓存键缺失",
		})
		return
	}

	result, err := h.redisService.GetRenderResult(context.Background(), key)
	if err != nil {
		h.internalError(c, "查询失败", err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该渲染结果",
		})
		return
	}

	c.JSON(http.StatusOK, model.RenderResponse{
		Success: true,
		Message: "查询成功",
		Data:    result,
	})
}

// Presets 列出可用背景预设
func (h *RenderHandler) Presets(c *gin.Context) {
	names := service.PresetNames()
	infos := make([]model.PresetInfo, 0, len(names))
	for _, name := range names {
		p, err := service.PresetByName(name)
		if err != nil {
			continue
		}
		infos = append(infos, model.PresetInfo{
			Name:            p.Name,
			TopColor:        hexColor(p.TopColor.R, p.TopColor.G, p.TopColor.B),
			HorizonColor:    hexColor(p.HorizonColor.R, p.HorizonColor.G, p.HorizonColor.B),
			FloorColor:      hexColor(p.FloorColor.R, p.FloorColor.G, p.FloorColor.B),
			HorizonPosition: p.HorizonPosition,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "presets": infos})
}

func (h *RenderHandler) parseOptions(c *gin.Context) model.RenderOptions {
	opts := model.DefaultRenderOptions()
	if h.cfg.Render.DefaultPreset != "" {
		opts.Preset = h.cfg.Render.DefaultPreset
	}

	if v := c.PostForm("preset"); v != "" {
		opts.Preset = v
	}
	if v := c.PostForm("format"); v != "" {
		opts.Format = v
	}
	opts.AddShadows = c.DefaultPostForm("add_shadows", "true") == "true"
	opts.AddReflection = c.DefaultPostForm("add_reflection", "true") == "true"

	if v, err := strconv.Atoi(c.DefaultPostForm("width", "0")); err == nil && v > 0 {
		opts.OutputWidth = v
	}
	if v, err := strconv.Atoi(c.DefaultPostForm("height", "0")); err == nil && v > 0 {
		opts.OutputHeight = v
	}
	if v, err := strconv.Atoi(c.DefaultPostForm("quality", "0")); err == nil && v > 0 {
		opts.Quality = v
	}
	return opts
}

func (h *RenderHandler) internalError(c *gin.Context, message string, err error) {
	utils.Logger.Error(message, zap.Error(err))
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func (h *RenderHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// cacheKey 生成渲染缓存键
// 同一张图配不同蒙版必须得到不同的键，否则会命中错误的渲染结果
func cacheKey(imageMD5, maskMD5 string, opts model.RenderOptions) string {
	return imageMD5 + ":" + maskMD5[:8] + ":" + utils.ShortHash([]byte(fmt.Sprintf("%+v", opts)))
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
