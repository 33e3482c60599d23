package probe

import "os"

func userHomeDir() (string, error) {
	return os.UserHomeDir()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
