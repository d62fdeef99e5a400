package models

// QueryRequest is the POST /api/query body. UseAI defaults to true when
// omitted; an explicit false keeps the query on the template path.
type QueryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
	Limit    int    `json:"limit" default:"100" validate:"gte=1,lte=1000"`
	UseAI    *bool  `json:"use_ai" default:"true"`
}

// AnomaliesRequest bounds the trailing-window anomaly scan.
type AnomaliesRequest struct {
	Days int `query:"days" default:"30" validate:"gte=1,lte=365"`
}

// AssetRequest selects an asset performance window.
type AssetRequest struct {
	Symbol string `query:"symbol" validate:"required,max=16"`
	Days   int    `query:"days" default:"30" validate:"gte=1,lte=365"`
}

// RecommendationsRequest bounds the recommendation window.
type RecommendationsRequest struct {
	Days int `query:"days" default:"30" validate:"gte=1,lte=365"`
}
