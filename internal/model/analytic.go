package model

// MonthBucketRow es una fila cruda de la agregación por mes de vencimiento.
// Month va de 1 a 12 en el calendario UTC.
type MonthBucketRow struct {
	Month       int
	Count       int64
	TotalAmount float64
}

// MonthCount - cantidad de facturas que vencen en un mes
type MonthCount struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// MonthAmount - suma de montos de facturas que vencen en un mes
type MonthAmount struct {
	Month       string  `json:"month"`
	TotalAmount float64 `json:"totalAmount"`
}
