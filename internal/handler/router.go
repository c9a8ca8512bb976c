package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/token"
)

// SetupRouter wires the /finance surface. Token auth is enforced when a
// secret is configured; an empty secret leaves the group open, which the
// development setup relies on.
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, cfg)

	finance := r.Group("/finance")
	if cfg.Server.AuthSecret != "" {
		signer := token.NewSigner(cfg.Server.AuthSecret, token.DefaultTTL)
		finance.Use(AuthMiddleware(signer))
	}
	{
		recettes := finance.Group("/recettes")
		{
			recettes.POST("", h.CreateRecette)
			recettes.GET("", h.GetRecettes)
			recettes.PUT("", h.UpdateRecette)
			recettes.PATCH("", h.SubscribeRecette)
			recettes.DELETE("", h.DeleteRecette)
			recettes.DELETE("/subscriptions", h.UnsubscribeRecette)
		}

		retraits := finance.Group("/retraits")
		{
			retraits.POST("", h.CreateRetrait)
			retraits.GET("/user/:id", h.GetRetraitsByAgent)
			retraits.GET("/annee/:id", h.GetRetraitsByAnnee)
			retraits.GET("/all", h.GetAllRetraits)
			retraits.PUT("/update/:id", h.UpdateRetrait)
			retraits.DELETE("/:id", h.DeleteRetrait)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
