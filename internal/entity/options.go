package entity

type ColorMode string

const (
	ColorModeBW    ColorMode = "bw"
	ColorModeColor ColorMode = "color"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Options - параметры печати заказа.
type Options struct {
	Copies        int         `json:"copies" validate:"required,min=1,max=1000"`
	PageSelection string      `json:"pageSelection" validate:"pageselection"`
	ColorMode     ColorMode   `json:"colorMode" validate:"required,oneof=bw color"`
	Orientation   Orientation `json:"orientation" validate:"required,oneof=portrait landscape"`
	PagesPerSheet int         `json:"pagesPerSheet" validate:"required,oneof=1 2 4 6 9 16"`
}

type Quote struct {
	Pages        int     `json:"pages"`
	PricePerPage float64 `json:"pricePerPage"`
	Price        float64 `json:"price"`
}
