package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pehchaan/pehchaan_be/internal/config"
	"github.com/pehchaan/pehchaan_be/internal/db"
	"github.com/pehchaan/pehchaan_be/internal/handlers"
	"github.com/pehchaan/pehchaan_be/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	// Redis powers the laborer GEO index. Optional: without it the
	// proximity matcher scans the DB.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis not reachable, geo index disabled: %v", err)
			rdb = nil
		}
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.FrontendBaseURL,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Length",
	}))

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	profileH := handlers.NewProfileHandler(gdb, rdb)
	projectH := handlers.NewProjectHandler(gdb)
	assignmentH := handlers.NewAssignmentHandler(gdb)
	workLogH := handlers.NewWorkLogHandler(gdb)
	gigH := handlers.NewGigHandler(gdb)
	workerH := handlers.NewWorkerHandler(gdb, rdb)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// protected (JWT bearer)
	protected := api.Group("/",
		middleware.JWTFromHeader(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	// profile
	protected.Get("/profile/me", profileH.GetMe)
	protected.Put("/profile/me", profileH.UpdateProfile)
	protected.Put("/profile/me/status",
		middleware.RequireRoles("labor"),
		profileH.UpdateStatus,
	)
	protected.Put("/profile/me/location",
		middleware.RequireRoles("labor"),
		profileH.UpdateLocation,
	)

	// projects (contractor)
	protected.Post("/projects",
		middleware.RequireRoles("contractor"),
		projectH.Create,
	)
	protected.Get("/projects/my-projects",
		middleware.RequireRoles("contractor"),
		projectH.ListMine,
	)

	// assignments
	protected.Post("/assignments",
		middleware.RequireRoles("contractor"),
		assignmentH.Create,
	)
	protected.Get("/assignments/my-projects",
		middleware.RequireRoles("labor"),
		assignmentH.ListMine,
	)
	protected.Get("/assignments/workers/search",
		middleware.RequireRoles("contractor"),
		assignmentH.SearchWorkers,
	)

	// work logs
	protected.Post("/work/check-in",
		middleware.RequireRoles("labor"),
		workLogH.CheckIn,
	)
	protected.Post("/work/check-out",
		middleware.RequireRoles("labor"),
		workLogH.CheckOut,
	)
	protected.Get("/work/my-logs", workLogH.MyLogs)
	protected.Post("/work/logs/:id/approve",
		middleware.RequireRoles("contractor"),
		workLogH.Approve,
	)

	// gigs
	protected.Post("/gigs/request",
		middleware.RequireRoles("consumer"),
		gigH.Request,
	)
	protected.Get("/gigs/my-gigs", gigH.MyGigs)
	protected.Post("/gigs/:id/accept",
		middleware.RequireRoles("labor"),
		gigH.Accept,
	)
	protected.Post("/gigs/:id/start",
		middleware.RequireRoles("labor"),
		gigH.Start,
	)
	protected.Post("/gigs/:id/complete",
		middleware.RequireRoles("labor"),
		gigH.Complete,
	)
	protected.Post("/gigs/:id/pay",
		middleware.RequireRoles("consumer", "labor"),
		gigH.Pay,
	)
	protected.Post("/gigs/:id/rate",
		middleware.RequireRoles("consumer"),
		gigH.Rate,
	)

	// worker search (consumer/contractor looking for labor)
	protected.Get("/workers/nearby",
		middleware.RequireRoles("consumer", "contractor"),
		workerH.Nearby,
	)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
