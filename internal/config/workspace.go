package config

import "time"

// RepoIdentity is the cached per-workspace view of a repository's GitHub
// identity. It is written as a whole record on every re-probe; partial
// updates are forbidden because a record with a branch but no owner/repo
// would satisfy a cache-hit check while being unusable.
type RepoIdentity struct {
	CurrentBranch   string `json:"current_branch,omitempty"`
	OwnerRepo       string `json:"owner_repo,omitempty"`
	IsFork          bool   `json:"is_fork,omitempty"`
	OriginOwnerRepo string `json:"origin_owner_repo,omitempty"`
}

// Valid reports whether the identity counts as a cache hit. An identity
// missing either the branch or the owner/repo is treated as a miss and
// triggers a full re-probe.
func (r *RepoIdentity) Valid() bool {
	return r != nil && r.CurrentBranch != "" && r.OwnerRepo != ""
}

// Workspace represents a tracked working directory and the base branch
// its sync status is computed against.
type Workspace struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	BaseBranch string    `json:"base_branch,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Identity is the cached repository identity, nil until first probe.
	Identity *RepoIdentity `json:"identity,omitempty"`
}

// AddWorkspace adds a new workspace. Returns false if a workspace with
// the same name or path already exists.
func (c *Config) AddWorkspace(ws Workspace) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.Workspaces {
		if existing.Name == ws.Name || existing.Path == ws.Path {
			return false
		}
	}
	c.Workspaces = append(c.Workspaces, ws)
	return true
}

// RemoveWorkspace removes a workspace by ID. Clears ActiveWorkspaceID if
// it was the active workspace. Returns false if not found.
func (c *Config) RemoveWorkspace(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ws := range c.Workspaces {
		if ws.ID == id {
			c.Workspaces = append(c.Workspaces[:i], c.Workspaces[i+1:]...)
			if c.ActiveWorkspaceID == id {
				c.ActiveWorkspaceID = ""
			}
			return true
		}
	}
	return false
}

// RenameWorkspace renames a workspace. Returns false if the workspace was
// not found or the new name is already taken.
func (c *Config) RenameWorkspace(id, newName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ws := range c.Workspaces {
		if ws.Name == newName && ws.ID != id {
			return false
		}
	}

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			c.Workspaces[i].Name = newName
			return true
		}
	}
	return false
}

// GetWorkspace returns a copy of a workspace by ID, or nil if not found.
func (c *Config) GetWorkspace(id string) *Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			ws := c.Workspaces[i] // copy
			if ws.Identity != nil {
				ident := *ws.Identity
				ws.Identity = &ident
			}
			return &ws
		}
	}
	return nil
}

// GetWorkspaceByName returns a copy of a workspace by name, or nil.
func (c *Config) GetWorkspaceByName(name string) *Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].Name == name {
			ws := c.Workspaces[i]
			if ws.Identity != nil {
				ident := *ws.Identity
				ws.Identity = &ident
			}
			return &ws
		}
	}
	return nil
}

// GetWorkspaces returns a copy of the workspaces slice
func (c *Config) GetWorkspaces() []Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()

	workspaces := make([]Workspace, len(c.Workspaces))
	copy(workspaces, c.Workspaces)
	for i := range workspaces {
		if workspaces[i].Identity != nil {
			ident := *workspaces[i].Identity
			workspaces[i].Identity = &ident
		}
	}
	return workspaces
}

// SetWorkspaceBaseBranch updates a workspace's base branch.
func (c *Config) SetWorkspaceBaseBranch(id, baseBranch string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			c.Workspaces[i].BaseBranch = baseBranch
			return true
		}
	}
	return false
}

// GetCachedIdentity returns a copy of the workspace's cached identity,
// or nil when no identity has been cached.
func (c *Config) GetCachedIdentity(id string) *RepoIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			if c.Workspaces[i].Identity == nil {
				return nil
			}
			ident := *c.Workspaces[i].Identity
			return &ident
		}
	}
	return nil
}

// SetCachedIdentity overwrites the workspace's cached identity as a whole
// record. Returns false if the workspace was not found.
func (c *Config) SetCachedIdentity(id string, identity RepoIdentity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			c.Workspaces[i].Identity = &identity
			return true
		}
	}
	return false
}

// ClearCachedIdentity drops the workspace's cached identity, forcing the
// next resolve to re-probe. Returns false if the workspace was not found.
func (c *Config) ClearCachedIdentity(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.Workspaces {
		if c.Workspaces[i].ID == id {
			c.Workspaces[i].Identity = nil
			return true
		}
	}
	return false
}
