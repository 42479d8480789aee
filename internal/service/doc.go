// Package service implements the business logic layer for the Globetrotter API.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository operations. Services are the primary
// abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts repository dependencies,
//     via a config struct when there is more than one
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or typed errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrGameNotFound = errors.New("game not found")
//	    ErrGameEnded    = errors.New("game is no longer active")
//	)
//
// # Example Usage
//
//	games := NewGameService(GameServiceConfig{
//	    GameRepo:     gameRepository,
//	    UserRepo:     userRepository,
//	    UserService:  userService,
//	    Destinations: destinationService,
//	    FrontendURL:  cfg.Game.FrontendURL,
//	})
//	round, err := games.NextRound(ctx, gameID, userID)
package service
