package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/repos"
  "github.com/xecuteapp/becoming-backend/internal/requestdata"
  "github.com/xecuteapp/becoming-backend/internal/types"
  "github.com/xecuteapp/becoming-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type RegisterInput struct {
  Email    string
  Password string
  Name     string
}

type AuthService interface {
  RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db                 *gorm.DB
  log                *logger.Logger
  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  userTokenRepo      repos.UserTokenRepo
  jwtSecretKey       string
  accessTTL          time.Duration
  refreshTTL         time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  characterStatsRepo repos.CharacterStatsRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:                 db,
    log:                serviceLog,
    userRepo:           userRepo,
    characterStatsRepo: characterStatsRepo,
    userTokenRepo:      userTokenRepo,
    jwtSecretKey:       jwtSecretKey,
    accessTTL:          accessTTL,
    refreshTTL:         refreshTTL,
  }
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

// RegisterUser creates the account and its character sheet atomically, so a
// brand-new player always has stats at zero rather than a missing row.
func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
  email := strings.ToLower(strings.TrimSpace(in.Email))
  name := strings.TrimSpace(in.Name)
  if email == "" || !strings.Contains(email, "@") {
    return nil, apierr.InvalidArgument("a valid email is required")
  }
  if name == "" {
    return nil, apierr.InvalidArgument("name is required")
  }
  if len(in.Password) < 8 {
    return nil, apierr.InvalidArgument("password must be at least 8 characters")
  }

  exists, exErr := as.userRepo.EmailExists(ctx, nil, email)
  if exErr != nil {
    return nil, fmt.Errorf("failed to check email: %w", exErr)
  }
  if exists {
    return nil, apierr.Conflict("email already registered")
  }

  hashed, hErr := utils.HashPassword(in.Password)
  if hErr != nil {
    return nil, fmt.Errorf("failed to hash password: %w", hErr)
  }

  user := &types.User{
    Email:                     email,
    Password:                  hashed,
    Name:                      name,
    DefaultFocusBlockDuration: 50,
  }
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if _, ucErr := as.userRepo.Create(ctx, tx, user); ucErr != nil {
      return fmt.Errorf("failed to create user: %w", ucErr)
    }
    stats := &types.CharacterStats{ID: uuid.New(), UserID: user.ID}
    if _, scErr := as.characterStatsRepo.Create(ctx, tx, stats); scErr != nil {
      return fmt.Errorf("failed to create character stats: %w", scErr)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = strings.ToLower(strings.TrimSpace(email))
  if email == "" || password == "" {
    return "", "", apierr.InvalidArgument("email and password are required")
  }

  user, uErr := as.userRepo.GetByEmail(ctx, nil, email)
  if uErr != nil {
    return "", "", fmt.Errorf("error retrieving user by email: %w", uErr)
  }
  if user == nil || !utils.VerifyPassword(user.Password, password) {
    return "", "", apierr.Unauthorized("invalid email or password")
  }

  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("generate access token error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    userToken := &types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, ctErr := as.userTokenRepo.Create(ctx, tx, userToken); ctErr != nil {
      as.log.Warn("Create user token error", "error", ctErr)
      return fmt.Errorf("create user token error: %w", ctErr)
    }
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", apierr.Unauthorized("refresh token not provided")
  }

  var accessToken string
  var newRefreshToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
    if ftErr != nil {
      return fmt.Errorf("error fetching refresh token: %w", ftErr)
    }
    if existing == nil {
      return apierr.Unauthorized("unknown refresh token")
    }
    if existing.ExpiresAt.Before(time.Now()) {
      if dtErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dtErr != nil {
        return fmt.Errorf("refresh token expired, error deleting: %w", dtErr)
      }
      return apierr.Unauthorized("refresh token expired")
    }
    user, uErr := as.userRepo.GetByID(ctx, tx, existing.UserID)
    if uErr != nil {
      return fmt.Errorf("failed to load user for refresh: %w", uErr)
    }
    if user == nil {
      return apierr.Unauthorized("no user found for the given refresh token")
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshToken = uuid.New().String()
    newUserToken := &types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cErr := as.userTokenRepo.Create(ctx, tx, newUserToken); cErr != nil {
      return fmt.Errorf("failed to create new user token: %w", cErr)
    }
    if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
      return fmt.Errorf("failed to remove old refresh token: %w", dErr)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return apierr.Unauthorized("no access token in request")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, ftErr := as.userTokenRepo.GetByAccessToken(ctx, tx, rd.TokenString)
    if ftErr != nil {
      return fmt.Errorf("error finding user token: %w", ftErr)
    }
    if found == nil {
      // already logged out
      return nil
    }
    if tdErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{found.ID}); tdErr != nil {
      return fmt.Errorf("error deleting user token: %w", tdErr)
    }
    return nil
  })
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apierr.Unauthorized("missing bearer token")
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthorized("failed to parse token: %v", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthorized("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthorized("invalid user id in token")
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    rd = &requestdata.RequestData{}
  }
  rd.TokenString = tokenString
  rd.UserID = userID
  return requestdata.WithRequestData(ctx, rd), nil
}
