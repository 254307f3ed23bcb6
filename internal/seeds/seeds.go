package seeds

func SeedAll() error {
	if err := SeedTopics(); err != nil {
		return err
	}
	if err := SeedCandidates(); err != nil {
		return err
	}
	return nil
}
