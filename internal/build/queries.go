package build

// Queries target the public Cirrus CI schema.
const (
	getReposQuery = `
		query GetRepos($owner: String!) {
			githubRepositories(owner: $owner) {
				id
				name
			}
		}
	`

	createBuildMutation = `
		mutation ScheduleCustomBuild($config: String!,
		                             $repo: ID!,
		                             $branch: String!,
		                             $mutation_id: String!) {
			createBuild(
				input: {
					repositoryId: $repo,
					branch: $branch,
					clientMutationId: $mutation_id,
					configOverride: $config
				}
			) {
				build {
					id
					status
				}
			}
		}
	`

	getBuildStatusQuery = `
		query GetBuild($build: ID!) {
			build(id: $build) {
				status
			}
		}
	`

	getBuildSummaryQuery = `
		query GetBuild($build: ID!) {
			build(id: $build) {
				id
				durationInSeconds
				clockDurationInSeconds
				status
				buildCreatedTimestamp
				changeTimestamp
			}
		}
	`

	getBuildLogQuery = `
		query GetBuildLog($build: ID!) {
			build(id: $build) {
				tasks {
					id
					name
					commands {
						name
					}
				}
			}
		}
	`

	recentBuildsQuery = `
		query RecentBuildTasks($repo_id: ID!, $last: Int!) {
			repository(id: $repo_id) {
				builds(last: $last) {
					edges {
						node {
							id
							tasks {
								id
							}
						}
					}
				}
			}
		}
	`
)
