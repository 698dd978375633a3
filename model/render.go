package model

// RenderOptions 单次渲染的配置项
// 零值字段由 Normalize 填充默认值，流水线内部不会修改
type RenderOptions struct {
	Preset        string `json:"preset" form:"preset"`
	AddShadows    bool   `json:"add_shadows" form:"add_shadows"`
	AddReflection bool   `json:"add_reflection" form:"add_reflection"`
	OutputWidth   int    `json:"output_width" form:"output_width"`
	OutputHeight  int    `json:"output_height" form:"output_height"`
	Quality       int    `json:"quality" form:"quality"`
	Format        string `json:"format" form:"format"`
}

// DefaultRenderOptions 默认渲染配置：studio_white 1920x1080，阴影和倒影开启
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Preset:        "studio_white",
		AddShadows:    true,
		AddReflection: true,
		OutputWidth:   1920,
		OutputHeight:  1080,
		Quality:       95,
		Format:        "jpeg",
	}
}

// Normalize 填充未设置的字段并返回
func (o RenderOptions) Normalize() RenderOptions {
	def := DefaultRenderOptions()
	if o.Preset == "" {
		o.Preset = def.Preset
	}
	if o.OutputWidth == 0 {
		o.OutputWidth = def.OutputWidth
	}
	if o.OutputHeight == 0 {
		o.OutputHeight = def.OutputHeight
	}
	if o.Quality == 0 {
		o.Quality = def.Quality
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	return o
}

// StageTiming 单个阶段耗时
type StageTiming struct {
	Stage  string  `json:"stage"`
	Millis float64 `json:"ms"`
}

// RenderResult 渲染结果
type RenderResult struct {
	Key       string        `json:"key"`
	MD5       string        `json:"md5"`
	Preset    string        `json:"preset"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Format    string        `json:"format"`
	File      string        `json:"file"`
	ElapsedMS float64       `json:"elapsed_ms"`
	Stages    []StageTiming `json:"stages"`
	Timestamp int64         `json:"timestamp"`
}

// RenderResponse 渲染响应
type RenderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *RenderResult `json:"data,omitempty"`
}

// PresetInfo 背景预设信息（用于 /presets 接口）
type PresetInfo struct {
	Name            string  `json:"name"`
	TopColor        string  `json:"top_color"`
	HorizonColor    string  `json:"horizon_color"`
	FloorColor      string  `json:"floor_color"`
	HorizonPosition float64 `json:"horizon_position"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
