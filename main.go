package main

import (
	"fmt"
	"log"

	"github.com/codeark35/legajos-sub000/internal/config"
	"github.com/codeark35/legajos-sub000/internal/database"
	"github.com/codeark35/legajos-sub000/internal/handler"
	"github.com/codeark35/legajos-sub000/internal/router"
)

func main() {
	// cargar configuración
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// base de datos
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// migraciones
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// usuario administrador inicial
	if err := handler.SeedAdmin(db, cfg.Admin.Usuario, cfg.Admin.Password); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	// router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
