// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "essentia/internal/infra/config"
	"essentia/internal/infra/database"
	firestoreinfra "essentia/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns env/config-resolved runtime settings (bucket, secrets, policy)
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers, or queries.
type Infra struct {
	// Config
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Postgres      *database.DB

	// Secrets resolved once at boot (Secret Manager override, env fallback)
	AdminAPIToken        string
	PaymentWebhookSecret string

	// Runtime settings (resolved once)
	MediaBucket string
	SelfBaseURL string
}

// NewInfra initializes shared infra.
// Firestore and Postgres are strict (return error): the cart split needs
// both backends. GCS, Firebase Auth and Secret Manager are best-effort
// (warn + continue); their endpoints fail closed when absent.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	inf := &Infra{
		Config:      cfg,
		ProjectID:   projectID,
		MediaBucket: strings.TrimSpace(cfg.GCSBucket),
		SelfBaseURL: strings.TrimSpace(cfg.PublicBaseURL),
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[shared.infra] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	{
		fsw, err := firestoreinfra.NewClient(ctx, inf.ProjectID, credFile)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: firestore init failed (project=%s): %w", inf.ProjectID, err)
		}
		if perr := fsw.Ping(ctx); perr != nil {
			log.Printf("[shared.infra] WARN: firestore ping failed: %v", perr)
		}
		inf.Firestore = fsw.Client
	}

	// 2) Postgres guest-cart store (strict)
	{
		db, err := database.NewConnection(strings.TrimSpace(cfg.PostgresDSN))
		if err != nil {
			_ = inf.Firestore.Close()
			return nil, fmt.Errorf("shared.infra: postgres init failed: %w", err)
		}
		inf.Postgres = db
	}

	// 3) GCS (best-effort; media endpoints fail closed when absent)
	{
		var gcsClient *storage.Client
		var err error
		if len(clientOpts) > 0 {
			gcsClient, err = storage.NewClient(ctx, clientOpts...)
		} else {
			gcsClient, err = storage.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (media endpoints disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[shared.infra] GCS storage client initialized")
		}
	}

	// 4) Firebase App/Auth (best-effort)
	{
		var fbApp *firebase.App
		var err error

		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		if len(clientOpts) > 0 {
			fbApp, err = firebase.NewApp(ctx, fbCfg, clientOpts...)
		} else {
			fbApp, err = firebase.NewApp(ctx, fbCfg)
		}

		if err != nil {
			log.Printf("[shared.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[shared.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[shared.infra] Firebase Auth initialized")
			}
		}
	}

	// 5) Secret Manager (best-effort)
	{
		var sm *secretmanager.Client
		var err error
		if len(clientOpts) > 0 {
			sm, err = secretmanager.NewClient(ctx, clientOpts...)
		} else {
			sm, err = secretmanager.NewClient(ctx)
		}
		if err != nil {
			log.Printf("[shared.infra] WARN: secretmanager.NewClient failed: %v (env secrets only)", err)
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 6) Secrets: Secret Manager overrides env when a resource name is set
	inf.AdminAPIToken = inf.resolveSecret(ctx, cfg.AdminAPITokenSecretName, cfg.AdminAPIToken, "admin api token")
	inf.PaymentWebhookSecret = inf.resolveSecret(ctx, cfg.PaymentWebhookSecretSecretName, cfg.PaymentWebhookSecret, "payment webhook secret")

	if inf.MediaBucket == "" {
		log.Printf("[shared.infra] WARN: GCS_BUCKET is empty (media upload will fail)")
	}

	return inf, nil
}

// resolveSecret reads one Secret Manager version ("latest" unless the name
// already carries /versions/), falling back to the env value.
func (i *Infra) resolveSecret(ctx context.Context, secretName, envValue, label string) string {
	name := strings.TrimSpace(secretName)
	if name == "" || i.SecretManager == nil {
		return strings.TrimSpace(envValue)
	}
	if !strings.Contains(name, "/versions/") {
		name = "projects/" + i.ProjectID + "/secrets/" + name + "/versions/latest"
	}
	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil || resp == nil || resp.Payload == nil {
		log.Printf("[shared.infra] WARN: AccessSecretVersion failed for %s: %v (using env value)", label, err)
		return strings.TrimSpace(envValue)
	}
	log.Printf("[shared.infra] %s loaded from Secret Manager", label)
	return strings.TrimSpace(string(resp.Payload.Data))
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.Postgres != nil {
		_ = i.Postgres.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT")); v != "" {
		return v
	}
	return ""
}

func redactPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) <= 12 {
		return "***"
	}
	return p[:6] + "..." + p[len(p)-6:]
}
