package docs

// @title 情侣厨房购物清单 API
// @version 1.0
// @description 菜谱食材合并与按天共享的购物清单服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey SignedRequest
// @in header
// @name Authorization
