package app

import (
	"context"
	"fmt"

	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
	keysRepository "github.com/allisson/pseudonymizer/internal/keys/repository"
	keysService "github.com/allisson/pseudonymizer/internal/keys/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() keysService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = keysService.NewKMSService()
	})
	return c.kmsService
}

// KeyRepository returns the file-backed key repository.
func (c *Container) KeyRepository() (*keysRepository.FileRepository, error) {
	var err error
	c.keyRepositoryInit.Do(func() {
		c.keyRepository, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepository"]; exists {
		return nil, storedErr
	}
	return c.keyRepository, nil
}

// KeyManager returns the key manager used by the pseudonymization service.
// The manager is initialized on first access: it loads the active key version
// from disk, generating the first version when none exists yet.
func (c *Container) KeyManager() (*keysService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// ReadOnlyKeyManager returns a key manager that loads existing keys but never
// generates or rotates them. Used by the repersonalization service and by
// inspection commands.
func (c *Container) ReadOnlyKeyManager() (*keysService.KeyManager, error) {
	var err error
	c.readOnlyKeyManagerInit.Do(func() {
		c.readOnlyKeyManager, err = c.initReadOnlyKeyManager()
		if err != nil {
			c.initErrors["readOnlyKeyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["readOnlyKeyManager"]; exists {
		return nil, storedErr
	}
	return c.readOnlyKeyManager, nil
}

// initKeyRepository creates the file-backed key repository, opening the KMS
// keeper when a key URI is configured.
func (c *Container) initKeyRepository() (*keysRepository.FileRepository, error) {
	var keeper keysDomain.Keeper
	if c.config.KMSKeyURI != "" {
		opened, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open KMS keeper for key repository: %w", err)
		}
		keeper = opened
	}

	repo, err := keysRepository.NewFileRepository(c.config.KeyDirectory, keeper)
	if err != nil {
		return nil, fmt.Errorf("failed to create key repository: %w", err)
	}
	return repo, nil
}

// initKeyManager creates and initializes the writable key manager.
func (c *Container) initKeyManager() (*keysService.KeyManager, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key manager: %w", err)
	}

	manager := keysService.NewKeyManager(repo, c.Logger())
	if err := manager.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}
	return manager, nil
}

// initReadOnlyKeyManager creates and initializes the read-only key manager.
func (c *Container) initReadOnlyKeyManager() (*keysService.KeyManager, error) {
	repo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for read-only key manager: %w", err)
	}

	manager := keysService.NewReadOnlyKeyManager(repo, c.Logger())
	if err := manager.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize read-only key manager: %w", err)
	}
	return manager, nil
}
