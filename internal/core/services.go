package core

type Services struct {
	Product   *ProductService
	Pricing   *PricingService
	Table     *TableService
	Campaign  *CampaignService
	Dashboard *DashboardService
}

func NewServices(db DB) *Services {
	products := NewProductService(db)
	return &Services{
		Product:   products,
		Pricing:   NewPricingService(db, products),
		Table:     NewTableService(db),
		Campaign:  NewCampaignService(db),
		Dashboard: NewDashboardService(db),
	}
}
