// Package food 食物環境影響與替代推薦的 HTTP 處理器
package food

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/core/recommend"
	"food-sustainability/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Engine 處理器需要的引擎操作
type Engine interface {
	GetImpact(ctx context.Context, foodName string) (*impact.Record, error)
	GetImpactByBarcode(ctx context.Context, barcode string) (*impact.Record, error)
	GetRecommendations(ctx context.Context, foodName string, opts recommend.Options) (*recommend.Recommendation, error)
	GetFoodInfo(ctx context.Context, foodName string, rec *impact.Record) (*recommend.FoodInfo, error)
	Compare(ctx context.Context, first, second string) (*recommend.Comparison, error)
	Search(query string) []string
	Foods() []string
}

var _ Engine = (*recommend.Service)(nil)

// Handler 食物相關 API
type Handler struct {
	engine Engine
	debug  bool
}

// NewHandler 創建處理器；debug 時錯誤回應帶有詳細原因
func NewHandler(engine Engine, debug bool) *Handler {
	return &Handler{
		engine: engine,
		debug:  debug,
	}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup, dedup gin.HandlerFunc) {
	rg.GET("/impact/:food", h.HandleImpact)
	rg.GET("/impact/barcode/:code", h.HandleBarcode)
	rg.GET("/recommendations/:food", h.HandleRecommendations)
	if dedup != nil {
		rg.POST("/recommendations", dedup, h.HandleRecommendationsPost)
	} else {
		rg.POST("/recommendations", h.HandleRecommendationsPost)
	}
	rg.GET("/search", h.HandleSearch)
	rg.GET("/food-info/:food", h.HandleFoodInfo)
	rg.GET("/compare", h.HandleCompare)
	rg.GET("/foods", h.HandleFoods)
}

// RecommendationRequest POST /recommendations 請求
type RecommendationRequest struct {
	Food        string                 `json:"food" binding:"required"`
	Limit       int                    `json:"limit,omitempty"`
	UseAI       *bool                  `json:"use_ai,omitempty"` // 預設 true
	IncludeInfo bool                   `json:"include_info,omitempty"`
	Preferences *WeightsRequest `json:"preferences,omitempty"`
}

// WeightsRequest 請求中的權重；未提供的欄位使用預設值
type WeightsRequest struct {
	Carbon        *float64 `json:"carbon,omitempty"`
	Water         *float64 `json:"water,omitempty"`
	Energy        *float64 `json:"energy,omitempty"`
	Waste         *float64 `json:"waste,omitempty"`
	Deforestation *float64 `json:"deforestation,omitempty"`
}

// merge 以預設權重補齊未提供的欄位；沒有任何欄位時回傳 nil
func (w *WeightsRequest) merge() *recommend.Preferences {
	if w == nil {
		return nil
	}
	prefs := recommend.DefaultPreferences()
	set := false
	for _, f := range []struct {
		value *float64
		dst   *float64
	}{
		{w.Carbon, &prefs.Carbon},
		{w.Water, &prefs.Water},
		{w.Energy, &prefs.Energy},
		{w.Waste, &prefs.Waste},
		{w.Deforestation, &prefs.Deforestation},
	} {
		if f.value != nil {
			*f.dst = *f.value
			set = true
		}
	}
	if !set {
		return nil
	}
	return &prefs
}

// SearchResponse 搜尋結果
type SearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

// FoodsResponse 已知食物清單
type FoodsResponse struct {
	Foods []string `json:"foods"`
	Count int      `json:"count"`
}

// HandleImpact GET /impact/:food
func (h *Handler) HandleImpact(c *gin.Context) {
	rec, err := h.engine.GetImpact(c.Request.Context(), c.Param("food"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleBarcode GET /impact/barcode/:code
func (h *Handler) HandleBarcode(c *gin.Context) {
	rec, err := h.engine.GetImpactByBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleRecommendations GET /recommendations/:food?limit=&use_ai=&include_info=&carbon_weight=...
func (h *Handler) HandleRecommendations(c *gin.Context) {
	opts, err := parseOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.recommend(c, c.Param("food"), opts)
}

// HandleRecommendationsPost POST /recommendations
func (h *Handler) HandleRecommendationsPost(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	opts := recommend.Options{
		Preferences:     req.Preferences.merge(),
		Limit:           req.Limit,
		AllowGenerative: req.UseAI == nil || *req.UseAI,
		IncludeFoodInfo: req.IncludeInfo,
	}
	h.recommend(c, req.Food, opts)
}

func (h *Handler) recommend(c *gin.Context, foodName string, opts recommend.Options) {
	res, err := h.engine.GetRecommendations(c.Request.Context(), foodName, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("推薦完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("food", res.Food),
		zap.String("source", res.Source),
		zap.Int("alternatives", len(res.Alternatives)),
	)
	c.JSON(http.StatusOK, res)
}

// HandleSearch GET /search?q=
func (h *Handler) HandleSearch(c *gin.Context) {
	q := c.Query("q")
	c.JSON(http.StatusOK, SearchResponse{
		Query:   q,
		Results: h.engine.Search(q),
	})
}

// HandleFoodInfo GET /food-info/:food
func (h *Handler) HandleFoodInfo(c *gin.Context) {
	info, err := h.engine.GetFoodInfo(c.Request.Context(), c.Param("food"), nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// HandleCompare GET /compare?food1=&food2=
func (h *Handler) HandleCompare(c *gin.Context) {
	cmp, err := h.engine.Compare(c.Request.Context(), c.Query("food1"), c.Query("food2"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// HandleFoods GET /foods
func (h *Handler) HandleFoods(c *gin.Context) {
	foods := h.engine.Foods()
	c.JSON(http.StatusOK, FoodsResponse{
		Foods: foods,
		Count: len(foods),
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, resp := common.ToResponse(err, h.debug)
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// weightParams 查詢參數與對應的權重欄位
var weightParams = []struct {
	param string
	field func(p *recommend.Preferences) *float64
}{
	{"carbon_weight", func(p *recommend.Preferences) *float64 { return &p.Carbon }},
	{"water_weight", func(p *recommend.Preferences) *float64 { return &p.Water }},
	{"energy_weight", func(p *recommend.Preferences) *float64 { return &p.Energy }},
	{"waste_weight", func(p *recommend.Preferences) *float64 { return &p.Waste }},
	{"deforestation_weight", func(p *recommend.Preferences) *float64 { return &p.Deforestation }},
}

// parseOptions 解析查詢參數；未提供的權重使用預設值
func parseOptions(c *gin.Context) (recommend.Options, error) {
	opts := recommend.Options{AllowGenerative: true}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return opts, common.NewValidationError("limit must be a non-negative integer")
		}
		opts.Limit = limit
	}
	if v := c.Query("use_ai"); v != "" {
		useAI, err := strconv.ParseBool(v)
		if err != nil {
			return opts, common.NewValidationError("use_ai must be a boolean")
		}
		opts.AllowGenerative = useAI
	}
	if v := c.Query("include_info"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return opts, common.NewValidationError("include_info must be a boolean")
		}
		opts.IncludeFoodInfo = include
	}

	prefs := recommend.DefaultPreferences()
	set := false
	for _, w := range weightParams {
		v := strings.TrimSpace(c.Query(w.param))
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, common.Wrap(common.ErrInvalidPreferences, err)
		}
		*w.field(&prefs) = f
		set = true
	}
	if set {
		opts.Preferences = &prefs
	}
	return opts, nil
}
